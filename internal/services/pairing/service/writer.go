package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	perr "fusepair/internal/platform/errors"
	"fusepair/internal/platform/logger"
	"fusepair/internal/platform/timeutil"
	"fusepair/internal/services/pairing/domain"
)

// writeCSV emits the session match file: one row per pair with display names
// resolved in a single batched directory read. A permission-denied target
// falls back to a random -PE<1..100> suffix
func (s *Service) writeCSV(ctx context.Context, date string, pairs []domain.Pair) (string, error) {
	log := logger.C(ctx)

	aliasSet := map[string]struct{}{}
	for _, p := range pairs {
		aliasSet[p.SE1] = struct{}{}
		aliasSet[p.SE2] = struct{}{}
	}
	names, err := s.dir.NamesByAliases(ctx, setKeys(aliasSet))
	if err != nil {
		return "", err
	}

	d, err := timeutil.ParseSessionDate(date)
	if err != nil {
		return "", err
	}
	fileDate := timeutil.FileDate(d)

	path := filepath.Join(s.cfg.OutDir, fileDate+"-matches.csv")
	f, err := os.Create(path)
	if os.IsPermission(err) {
		log.Error().Str("path", path).Msg("permission denied writing matches; retrying with suffix")
		path = filepath.Join(s.cfg.OutDir, fmt.Sprintf("%s-matches-PE%d.csv", fileDate, 1+s.intn(100)))
		f, err = os.Create(path)
	}
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "create matches file %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"SE1_NAME", "SE1_CCO", "SE2_CCO", "SE2_NAME"}); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "write matches header")
	}
	for _, p := range pairs {
		row := []string{nameOr(names, p.SE1), p.SE1, p.SE2, nameOr(names, p.SE2)}
		if err := w.Write(row); err != nil {
			return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "write matches row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "flush matches file")
	}
	if err := f.Close(); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "close matches file")
	}

	log.Info().Str("path", path).Int("pairs", len(pairs)).Msg("matches written")
	return path, nil
}

func nameOr(names map[string]string, alias string) string {
	if n, ok := names[alias]; ok && n != "" {
		return n
	}
	return "Unknown"
}
