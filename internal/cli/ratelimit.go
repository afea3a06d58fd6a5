package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/infrastructure/config"
	"github.com/mechinsul/leadform/internal/usecase/check_rate_limit"
)

func newRateLimitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage shared rate limit state in Redis",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "reset <scope> <identifier>",
			Short: "Forget every request seen from one client",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				limiter, closeFn, err := sharedLimiter(cmd, a, args[0])
				if err != nil {
					return err
				}
				defer closeFn()

				if err := limiter.Reset(cmd.Context(), args[1]); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "reset %s for %s\n", args[0], args[1])
				return err
			},
		},
		&cobra.Command{
			Use:   "clear <scope>",
			Short: "Forget every client of a scope",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				limiter, closeFn, err := sharedLimiter(cmd, a, args[0])
				if err != nil {
					return err
				}
				defer closeFn()

				if err := limiter.ClearAll(cmd.Context()); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", args[0])
				return err
			},
		},
	)
	return cmd
}

// sharedLimiter builds a limiter over Redis. In-memory state belongs to the
// server process and cannot be reached from here.
func sharedLimiter(cmd *cobra.Command, a *app, rawScope string) (*check_rate_limit.UseCase, func(), error) {
	if err := a.load(false); err != nil {
		return nil, nil, err
	}

	// Reset and ClearAll do not consult the policy
	scope := entity.Scope(rawScope)
	policy, ok := check_rate_limit.PolicyFor(scope)
	if !ok {
		a.sync()
		return nil, nil, fmt.Errorf("unknown scope %q (want %s or %s)", rawScope, entity.ScopeContact, entity.ScopeQuote)
	}
	if a.cfg.RateLimitStore != config.StoreRedis {
		a.sync()
		return nil, nil, fmt.Errorf("RATE_LIMIT_STORE is %q; use the admin API to manage in-memory state", a.cfg.RateLimitStore)
	}

	storage, err := newRateLimitStorage(cmd.Context(), a.cfg, a.log)
	if err != nil {
		a.sync()
		return nil, nil, err
	}
	limiter, err := check_rate_limit.NewUseCase(scope, storage, policy)
	if err != nil {
		_ = storage.Close()
		a.sync()
		return nil, nil, err
	}

	return limiter, func() {
		_ = storage.Close()
		a.sync()
	}, nil
}
