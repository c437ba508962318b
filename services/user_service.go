package services

import (
	"errors"
	"strings"

	"backend/config"
	"backend/models"
)

type ProfileInput struct {
	FullName     string `json:"full_name"`
	WellnessGoal string `json:"wellness_goal"`
}

func GetUserProfile(userID uint) (map[string]interface{}, error) {
	var user models.User
	result := config.DB.Where("id = ? AND disabled = ?", userID, false).First(&user)
	if result.Error != nil {
		return nil, errors.New("user not found or disabled")
	}

	return map[string]interface{}{
		"id":            user.ID,
		"email":         user.Email,
		"full_name":     user.FullName,
		"wellness_goal": user.WellnessGoal,
		"member_since":  user.CreatedAt.Format("2006-01-02"),
	}, nil
}

func UpdateUserProfile(userID uint, input ProfileInput) error {
	var user models.User
	result := config.DB.Where("id = ? AND disabled = ?", userID, false).First(&user)
	if result.Error != nil {
		return errors.New("user not found or disabled")
	}

	if name := strings.TrimSpace(input.FullName); name != "" {
		user.FullName = name
	}
	if goal := strings.TrimSpace(input.WellnessGoal); goal != "" {
		user.WellnessGoal = goal
	}

	return config.DB.Save(&user).Error
}

// DeleteAccount disables the user and erases their event log. Earned
// achievements and the profile rows are left for audit; events are the only
// user data subject to erasure.
func DeleteAccount(userID uint) error {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return err
	}

	if err := config.DB.Where("user_id = ?", userID).Delete(&models.WellnessEvent{}).Error; err != nil {
		return err
	}

	user.Disabled = true
	return config.DB.Save(&user).Error
}
