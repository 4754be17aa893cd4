// File: cmd/diagnostic/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/iyunix/go-messenger/internal/app"
	"github.com/iyunix/go-messenger/internal/config"
	"github.com/iyunix/go-messenger/internal/services"
	"github.com/iyunix/go-messenger/internal/services/chat"
	"github.com/iyunix/go-messenger/internal/services/translation"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "diagnostic",
		Short:        "Exercise the messaging core against the configured backends",
		SilenceUsage: true,
	}
	root.AddCommand(newTranslateCmd(), newWatchCmd())
	return root
}

func newTranslateCmd() *cobra.Command {
	var text, lang string
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate one text through the translation backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			logger := services.NewLogger("diagnostic")

			tc := app.ProvideTranslationConfig(cfg)
			if err := tc.Validate(); err != nil {
				return err
			}
			limiter := app.ProvideRateLimiter(tc)
			defer limiter.Close()
			overlay := translation.NewOverlay(translation.NewOpenAIProvider(tc, logger), limiter, tc, logger)

			start := time.Now()
			out, err := overlay.Translate(cmd.Context(), "diagnostic", text, lang)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n(%s via %s in %s)\n", out, lang, tc.Model, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "text to translate")
	cmd.Flags().StringVar(&lang, "lang", "en", "target language (BCP 47)")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var viewer, peer string
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open a chat as --viewer and log every view published for it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			logger := services.NewLogger("diagnostic")
			reg := prometheus.NewRegistry()

			a, err := app.Build(cfg, logger, reg)
			if err != nil {
				return err
			}
			defer a.Close()

			token, err := a.Identity.IssueToken(viewer, duration+time.Minute)
			if err != nil {
				return err
			}
			if _, err := a.Identity.SignInWithToken(token); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, duration)
			defer cancel()

			sub, err := a.Messenger.OpenChat(ctx, peer, func(v chat.View) {
				msgs := v.Messages()
				logger.Info("View published",
					"chat_id", v.ChatID,
					"generation", v.Generation,
					"messages", len(msgs),
					"items", len(v.Items))
				if n := len(msgs); n > 0 {
					last := msgs[n-1]
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n",
						humanize.Time(last.SentAt), last.SenderID, last.DisplayText())
				}
			})
			if err != nil {
				return err
			}
			<-ctx.Done()
			a.Messenger.CloseChat(sub)
			sub.Wait()

			families, err := reg.Gather()
			if err != nil {
				return err
			}
			for _, mf := range families {
				for _, metric := range mf.GetMetric() {
					if c := metric.GetCounter(); c != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mf.GetName(), humanize.Comma(int64(c.GetValue())))
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&viewer, "viewer", "", "user id to watch as")
	cmd.Flags().StringVar(&peer, "peer", "", "the other participant")
	cmd.Flags().DurationVar(&duration, "for", 30*time.Second, "how long to watch")
	_ = cmd.MarkFlagRequired("viewer")
	_ = cmd.MarkFlagRequired("peer")
	return cmd
}
