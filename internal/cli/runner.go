package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/neighborhoods/internal/adapters/similarity"
	service "github.com/okian/neighborhoods/internal/app"
	"github.com/okian/neighborhoods/internal/domain/form"
	"github.com/okian/neighborhoods/internal/domain/profile"
	"github.com/okian/neighborhoods/internal/domain/results"
	"github.com/okian/neighborhoods/pkg/logger"
)

// Run executes one CLI invocation and writes its report to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	log := logger.Named("cli")

	labels := cfg.Profiles
	if len(labels) == 0 {
		labels = profile.DefaultLabels
	}
	profiles, err := profile.NewSet(labels)
	if err != nil {
		return fmt.Errorf("profiles: %w", err)
	}

	client, err := similarity.New(cfg.BaseURL,
		similarity.WithTimeout(cfg.Timeout),
		similarity.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		similarity.WithLogger(logger.Named("similarity")),
	)
	if err != nil {
		return err
	}
	svc := service.New(
		service.WithUpstream(client),
		service.WithProfiles(profiles),
		service.WithSuggestionCount(cfg.SuggestionCount),
		service.WithLogger(logger.Get()),
	)

	log.Debug(ctx, "starting",
		logger.String("baseURL", client.BaseURL()),
		logger.String("player", cfg.PlayerName),
		logger.String("profile", cfg.Profile),
		logger.Int("k", cfg.GroupSize),
		logger.Bool("exact", cfg.Exact),
	)

	switch {
	case cfg.CheckProfiles:
		return checkProfiles(ctx, svc, out)
	case cfg.Seasons:
		return listSeasons(ctx, svc, cfg.PlayerName, out)
	}
	return search(ctx, svc, cfg, out)
}

func search(ctx context.Context, svc *service.Service, cfg *Config, out io.Writer) error {
	sess := svc.NewSession()
	fields := []struct {
		name  form.Field
		value string
	}{
		{form.FieldPlayerName, cfg.PlayerName},
		{form.FieldYear, cfg.Year},
		{form.FieldGroupSize, strconv.Itoa(cfg.GroupSize)},
		{form.FieldExact, strconv.FormatBool(cfg.Exact)},
	}
	for _, f := range fields {
		if err := sess.SetField(f.name, f.value); err != nil {
			return err
		}
	}
	if cfg.Profile != "" {
		if err := sess.ToggleProfile(cfg.Profile); err != nil {
			return fmt.Errorf("%w (choose one of: %s)", err, keys(svc.Profiles()))
		}
	}

	view, err := sess.Submit(ctx)
	if v, ok := form.AsValidation(err); ok {
		writeValidation(out, v)
		return err
	}
	if err != nil {
		writeFailure(out, view.Results)
		return err
	}

	table := view.Results.Table()
	if err := Render(out, table); err != nil {
		return err
	}
	if n := len(table.Violations()); n > 0 {
		fmt.Fprintf(out, "\nwarning: %d row(s) do not match the declared features\n", n)
	}
	return nil
}

func checkProfiles(ctx context.Context, svc *service.Service, out io.Writer) error {
	missing, extra, err := svc.CheckProfiles(ctx)
	if err != nil {
		return err
	}
	if len(missing) == 0 && len(extra) == 0 {
		fmt.Fprintln(out, "profiles match the service")
		return nil
	}
	if len(missing) > 0 {
		fmt.Fprintf(out, "unknown to the service: %s\n", strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		fmt.Fprintf(out, "not offered by the form: %s\n", strings.Join(extra, ", "))
	}
	if len(missing) > 0 {
		return ErrProfileDrift
	}
	return nil
}

func listSeasons(ctx context.Context, svc *service.Service, name string, out io.Writer) error {
	if strings.TrimSpace(name) == "" {
		return errors.New(form.MsgEnterName)
	}
	resp, err := svc.PlayerSeasons(ctx, name)
	if err != nil {
		if msg := similarity.ServerMessage(err); msg != "" {
			fmt.Fprintf(out, "Error: %s\n", msg)
		}
		return err
	}
	fmt.Fprintf(out, "%s: %d season(s)\n", resp.Player, len(resp.Seasons))
	for _, s := range resp.Seasons {
		fmt.Fprintf(out, "  %s\n", results.FormatSeason(string(s)))
	}
	return nil
}

func writeValidation(out io.Writer, v form.Validation) {
	fields := make([]string, 0, len(v.FieldErrors))
	for f := range v.FieldErrors {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(out, "%s: %s\n", f, v.FieldErrors[form.Field(f)])
	}
}

func writeFailure(out io.Writer, r results.State) {
	msg := r.Error
	if msg == "" {
		msg = results.MsgFallback
	}
	fmt.Fprintf(out, "Error: %s\n", msg)
	if len(r.Suggestions) > 0 {
		fmt.Fprintf(out, "Did you mean: %s?\n", strings.Join(r.Suggestions, ", "))
	}
}

func keys(set *profile.Set) string {
	all := set.All()
	out := make([]string, len(all))
	for i, p := range all {
		out[i] = p.Key
	}
	return strings.Join(out, ", ")
}
