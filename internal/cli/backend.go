package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mokayaj857/vireya/internal/apiclient"
	"github.com/mokayaj857/vireya/internal/services"
)

type fetchFunc func(*apiclient.Client, context.Context) (any, error)

// fetchCmd wraps a no-argument backend call.
func fetchCmd(e *env, use, short string, fetch fetchFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.client()
			if err != nil {
				return err
			}
			v, err := fetch(c, cmd.Context())
			if err != nil {
				return describeError(err)
			}
			return printValue(cmd.OutOrStdout(), v, e.pretty())
		},
	}
}

func welcomeCmd(e *env) *cobra.Command {
	return fetchCmd(e, "welcome", "Print the backend welcome payload", (*apiclient.Client).Welcome)
}

func analyticsCmd(e *env) *cobra.Command {
	return fetchCmd(e, "analytics", "Print the analytics summary", (*apiclient.Client).AnalyticsSummary)
}

func contentCmd(e *env) *cobra.Command {
	return fetchCmd(e, "content", "List published content", (*apiclient.Client).ContentList)
}

func overviewCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Fetch welcome, analytics and content together",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.client()
			if err != nil {
				return err
			}
			svc := &services.InsightsService{API: c}
			return printValue(cmd.OutOrStdout(), svc.Overview(cmd.Context()), e.pretty())
		},
	}
}

func supportCmd(e *env) *cobra.Command {
	var t apiclient.SupportTicket
	cmd := &cobra.Command{
		Use:   "support",
		Short: "Open a support ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t.Subject = strings.TrimSpace(t.Subject)
			t.Message = strings.TrimSpace(t.Message)
			if t.Subject == "" || t.Message == "" {
				return errors.New("--subject and --message are required")
			}
			c, err := e.client()
			if err != nil {
				return err
			}
			v, err := c.CreateSupportTicket(cmd.Context(), t)
			if err != nil {
				return describeError(err)
			}
			return printValue(cmd.OutOrStdout(), v, e.pretty())
		},
	}
	cmd.Flags().StringVar(&t.Subject, "subject", "", "ticket subject")
	cmd.Flags().StringVar(&t.Message, "message", "", "ticket body")
	cmd.Flags().StringVar(&t.Email, "email", "", "reply address (optional)")
	return cmd
}
