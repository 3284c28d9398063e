package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/service"
)

var (
	newUser    service.NewUser
	printToken bool
)

var createUserCmd = &cobra.Command{
	Use:   "createuser",
	Short: "Create a user account, optionally with staff rights",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		auth := service.NewAuthService(db, cfg.JWTSecret)
		user, err := auth.CreateUser(cmd.Context(), newUser)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d, staff %t)\n", user.Username, user.ID, user.IsStaff)

		if printToken {
			token, err := auth.GenerateToken(user)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token: %s\n", token)
		}
		return nil
	},
}

func init() {
	f := createUserCmd.Flags()
	f.StringVar(&newUser.Email, "email", "", "Email address")
	f.StringVar(&newUser.Username, "username", "", "Unique username")
	f.StringVar(&newUser.FirstName, "first-name", "", "First name")
	f.StringVar(&newUser.LastName, "last-name", "", "Last name")
	f.StringVar(&newUser.Password, "password", "", "Password")
	f.BoolVar(&newUser.IsStaff, "staff", false, "Grant staff rights (edit or delete any recipe)")
	f.BoolVar(&printToken, "token", false, "Print a bearer token for the new user")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createUserCmd)
}
