package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var (
	sesOnce   sync.Once
	sesClient *ses.Client
)

func mailer() *ses.Client {
	sesOnce.Do(func() {
		cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(os.Getenv("AWS_REGION")))
		if err != nil {
			log.Printf("AWS config load failed, email disabled: %v", err)
			return
		}
		sesClient = ses.NewFromConfig(cfg)
	})
	return sesClient
}

// generic SES sender
func sendEmail(to string, subject string, body string) error {
	client := mailer()
	if client == nil || os.Getenv("SES_EMAIL") == "" {
		return fmt.Errorf("email not configured")
	}

	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
		Source: aws.String(os.Getenv("SES_EMAIL")),
	}

	_, err := client.SendEmail(context.TODO(), input)
	if err != nil {
		log.Printf("SES send error: %v", err)
		return fmt.Errorf("email send failed: %v", err)
	}
	return nil
}

// SendWeeklyReportEmail delivers the weekly wellness report narrative.
func SendWeeklyReportEmail(to string, body string) error {
	return sendEmail(to, "Your weekly wellness report", body)
}
