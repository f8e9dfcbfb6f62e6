package settings

import (
	"context"
	"encoding/json"

	"sjsage522/pricecontext/logger"
)

// Store is the read/write boundary with the settings UI
type Store interface {
	// Enabled returns the enabled flag and whether it was present at all
	Enabled(ctx context.Context) (bool, bool, error)

	// Language returns the UI language code and whether it was present
	Language(ctx context.Context) (string, bool, error)

	// Sync returns the salary, work hours and reference item records
	Sync(ctx context.Context) (RawSettings, error)

	SetEnabled(ctx context.Context, enabled bool) error
	SetLanguage(ctx context.Context, language string) error
	SetSalary(ctx context.Context, salary Salary) error
	SetWorkHoursPerDay(ctx context.Context, hours float64) error
	SetBaseItem(ctx context.Context, item BaseItem) error

	// Subscribe delivers change notifications until ctx is done
	Subscribe(ctx context.Context) (<-chan Change, error)

	// Close releases the underlying connection
	Close() error
}

// decodeSync builds RawSettings from raw JSON values keyed by setting name.
// A malformed value is treated as absent.
func decodeSync(values map[string][]byte) RawSettings {
	var raw RawSettings

	if data, ok := values[KeySalary]; ok {
		var salary Salary
		if err := json.Unmarshal(data, &salary); err != nil {
			logger.ForSettings().Warn().Err(err).Str("key", KeySalary).Msg("Ignoring malformed setting")
		} else {
			raw.Salary = &salary
		}
	}

	if data, ok := values[KeyWorkHoursPerDay]; ok {
		var hours Number
		if err := json.Unmarshal(data, &hours); err != nil {
			logger.ForSettings().Warn().Err(err).Str("key", KeyWorkHoursPerDay).Msg("Ignoring malformed setting")
		} else {
			raw.WorkHoursPerDay = &hours
		}
	}

	if data, ok := values[KeyBaseItem]; ok {
		var item BaseItem
		if err := json.Unmarshal(data, &item); err != nil {
			logger.ForSettings().Warn().Err(err).Str("key", KeyBaseItem).Msg("Ignoring malformed setting")
		} else {
			raw.BaseItem = &item
		}
	}

	return raw
}
