package strategyconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var (
	validateOnce sync.Once
	structCheck  *validator.Validate
)

// tagValidator reports field paths by their yaml names (e.g. gates.price_floor)
func tagValidator() *validator.Validate {
	validateOnce.Do(func() {
		structCheck = validator.New()
		structCheck.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return structCheck
}

// Validate checks all required constraints.
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Struct tags ===
	if err := tagValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ValidationError{fieldPath(fe.Namespace()), tagMessage(fe)}
		}
		return ValidationError{"config", err.Error()}
	}

	// === Anchor ===
	if cfg.Anchor.Policy == AnchorExplicit && cfg.Anchor.AsOf == "" {
		return ValidationError{"anchor.as_of", "required when policy is explicit"}
	}
	if cfg.Anchor.AsOf != "" {
		if _, err := contracts.ParseDate(cfg.Anchor.AsOf); err != nil {
			return ValidationError{"anchor.as_of", "must be YYYY-MM-DD"}
		}
	}

	// === Features ===
	if cfg.Features.VolWindowShort >= cfg.Features.VolWindowLong {
		return ValidationError{"features", "vol_window_short must be < vol_window_long"}
	}

	// === Scoring ===
	if cfg.Scoring.WeightsPct.Sum() != 100 {
		return ValidationError{"scoring.weights_pct", fmt.Sprintf("must sum to 100, got %d", cfg.Scoring.WeightsPct.Sum())}
	}
	if cfg.Gates.LiquidityFloor > 0 && cfg.Scoring.LiquidityCeiling <= cfg.Gates.LiquidityFloor {
		return ValidationError{"scoring.liquidity_ceiling", "must be > gates.liquidity_floor"}
	}
	for theme := range cfg.Scoring.ThemeBonus {
		if strings.TrimSpace(theme) == "" {
			return ValidationError{"scoring.theme_bonus", "theme name must not be empty"}
		}
	}

	return nil
}

// Warn returns non-fatal advisories about a valid config
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Gates.LiquidityFloor == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_LIQUIDITY_FLOOR",
			Message: "gates.liquidity_floor is 0: LIQUIDITY_LT_FLOOR never fires",
		})
	}

	if cfg.Gates.MinHistoryDays < cfg.Features.VolWindowLong+1 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_MIN_HISTORY",
			Message: fmt.Sprintf("gates.min_history_days=%d lets symbols without vol_%dd through", cfg.Gates.MinHistoryDays, cfg.Features.VolWindowLong),
		})
	}

	if !cfg.Features.AnnualizeVolatility {
		warnings = append(warnings, Warning{
			Code:    "DAILY_VOLATILITY",
			Message: "volatility is not annualized: risk.high_volatility must be a daily figure",
		})
	}

	return warnings
}

// === Helper Functions ===

// fieldPath drops the root struct name: "Config.gates.price_floor" → "gates.price_floor"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	case "gtfield":
		return fmt.Sprintf("must be > %s", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	default:
		return fmt.Sprintf("must satisfy %s=%s, got %v", fe.Tag(), fe.Param(), fe.Value())
	}
}
