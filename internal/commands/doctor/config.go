package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/parcel/internal/core/config"
)

// ConfigCheck validates the configuration file.
type ConfigCheck struct {
	config *config.Config
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config) *ConfigCheck {
	return &ConfigCheck{config: cfg}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.config == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config loaded",
			Status: StatusFail,
			Detail: "configuration not loaded",
			Hint:   "check the path passed with --config or PARCEL_CONFIG",
		})
		return result
	}

	err := c.config.Validate()
	warnings := c.config.Warnings()

	if err == nil && len(warnings) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config valid",
			Status: StatusPass,
		})
		return result
	}

	if err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				label := fe.Field
				if label == "" {
					label = "validation"
				}
				result.Items = append(result.Items, CheckItem{
					Label:  label,
					Status: StatusFail,
					Detail: fe.Err.Error(),
					Hint:   configHint(fe.Field),
				})
			}
		} else {
			result.Items = append(result.Items, CheckItem{
				Label:  "validation",
				Status: StatusFail,
				Detail: err.Error(),
				Hint:   "run 'parcel config' to see the loaded values",
			})
		}
	}

	for _, w := range warnings {
		label := w.Item
		if label == "" {
			label = "config"
		}
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusWarn,
			Detail: w.Message,
		})
	}

	return result
}

// configHint suggests a repair for a failing config field.
func configHint(field string) string {
	switch {
	case strings.HasPrefix(field, "keybindings"):
		return "each keybinding needs exactly one of action (wishlist, show) or sh"
	case strings.HasPrefix(field, "history"):
		return "history.max_entries must be at least 1"
	case field == "":
		return "run 'parcel config' to see the loaded values"
	default:
		return fmt.Sprintf("edit %s in the config file", field)
	}
}
