package services

import (
	"errors"
	"log/slog"

	"neuro-sync/database"
)

// partial accepts list results that skipped undecodable rows. The skipped
// rows are logged and the error is dropped; any other error is returned.
func partial(logger *slog.Logger, op string, err error) error {
	var skipped database.RowErrors
	if errors.As(err, &skipped) {
		logger.Warn("skipped undecodable rows", "op", op, "count", len(skipped), "error", err)
		return nil
	}
	return err
}
