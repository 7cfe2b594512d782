package main

import (
	"errors"
	"fmt"
	"time"

	"okrproject/auth"
	"okrproject/errs"
	"okrproject/models"
	repository "okrproject/repositories"
	"okrproject/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var adminInput models.RegisterRequest

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an Admin user, or promote an existing one",
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminInput.Email, "email", "", "admin email (required)")
	createAdminCmd.Flags().StringVar(&adminInput.Name, "name", "Administrator", "display name")
	createAdminCmd.Flags().StringVar(&adminInput.Password, "password", "", "initial password, at least 8 characters (required)")
	createAdminCmd.Flags().StringVar(&adminInput.Department, "department", "HR", "department")
	createAdminCmd.Flags().StringVar(&adminInput.Designation, "designation", "Administrator", "designation")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	// Role is not self-selectable at registration; this command is how Admins are made.
	if err := utils.Validate.StructExcept(&adminInput, "Role"); err != nil {
		return fmt.Errorf("invalid admin: %w", err)
	}

	ctx := cmd.Context()
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	users := repository.NewUserRepository(rt.db)

	existing, err := users.GetByEmail(ctx, adminInput.Email)
	switch {
	case err == nil:
		if err := users.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return err
		}
		rt.log.Info("existing user promoted to admin", zap.String("user_id", existing.ID.Hex()))
		return nil
	case !errors.Is(err, errs.ErrNotFound):
		return err
	}

	hash, err := auth.HashPassword(adminInput.Password)
	if err != nil {
		return err
	}
	now := time.Now()
	admin := &models.User{
		Email:        adminInput.Email,
		PasswordHash: hash,
		Name:         adminInput.Name,
		Role:         models.RoleAdmin,
		Department:   adminInput.Department,
		Designation:  adminInput.Designation,
		IsActive:     true,
		CreatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	rt.log.Info("admin created", zap.String("user_id", admin.ID.Hex()), zap.String("email", admin.Email))
	return nil
}
