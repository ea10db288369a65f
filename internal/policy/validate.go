package policy

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"greendrake/commentguard/internal/models"
)

// RawOptions holds settings-form input keyed by option name.
type RawOptions map[string]string

// enabledSentinel is the only raw value that turns a flag on.
const enabledSentinel = "1"

var validate = validator.New()

var (
	capabilityRule = oneOfRule(models.AllCapabilities)
	themeRule      = oneOfRule(models.AllThemes)
	languageRule   = oneOfRule(models.AllLanguages)
)

func oneOfRule[T ~string](allowed []T) string {
	parts := make([]string, len(allowed))
	for i, v := range allowed {
		parts[i] = string(v)
	}
	return "required,oneof=" + strings.Join(parts, " ")
}

// Validate builds a canonical PolicyConfig from raw settings input. Enumerated
// fields outside their allowed set, unparsable tab indexes and empty error texts
// keep the value from previous.
func Validate(raw RawOptions, previous models.PolicyConfig) models.PolicyConfig {
	var validated models.PolicyConfig

	// keys are usually pasted with surrounding whitespace
	validated.PublicKey = strings.TrimSpace(raw["public_key"])
	validated.PrivateKey = strings.TrimSpace(raw["private_key"])

	validated.ShowInComments = raw["show_in_comments"] == enabledSentinel
	validated.ShowInRegistration = raw["show_in_registration"] == enabledSentinel
	validated.BypassForRegisteredUsers = raw["bypass_for_registered_users"] == enabledSentinel
	validated.XHTMLCompliance = raw["xhtml_compliance"] == enabledSentinel

	validated.MinimumBypassLevel = models.Capability(member(raw, "minimum_bypass_level", capabilityRule, string(previous.MinimumBypassLevel)))
	validated.CommentsTheme = models.Theme(member(raw, "comments_theme", themeRule, string(previous.CommentsTheme)))
	validated.RegistrationTheme = models.Theme(member(raw, "registration_theme", themeRule, string(previous.RegistrationTheme)))
	validated.RecaptchaLanguage = models.Language(member(raw, "recaptcha_language", languageRule, string(previous.RecaptchaLanguage)))

	validated.CommentsTabIndex = tabIndex(raw, "comments_tab_index", previous.CommentsTabIndex)
	validated.RegistrationTabIndex = tabIndex(raw, "registration_tab_index", previous.RegistrationTabIndex)

	validated.NoResponseErrorText = text(raw, "no_response_error", previous.NoResponseErrorText)
	validated.IncorrectResponseErrorText = text(raw, "incorrect_response_error", previous.IncorrectResponseErrorText)
	validated.ServiceErrorText = text(raw, "service_error", previous.ServiceErrorText)

	return validated
}

func member(raw RawOptions, key, rule, previous string) string {
	value := raw[key]
	if err := validate.Var(value, rule); err != nil {
		log.Debug().Str("option", key).Str("value", value).Msg("Rejected option value, keeping previous.")
		return previous
	}
	return value
}

// tabIndex parses an integer and clamps it to [0, MaxTabIndex].
func tabIndex(raw RawOptions, key string, previous int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw[key]))
	if err != nil {
		return clamp(previous)
	}
	return clamp(n)
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > models.MaxTabIndex {
		return models.MaxTabIndex
	}
	return n
}

func text(raw RawOptions, key, previous string) string {
	if v := raw[key]; strings.TrimSpace(v) != "" {
		return v
	}
	return previous
}

// FromLegacy imports the flat option record of the previous plugin version.
// Only field names change.
func FromLegacy(old models.LegacyOptions) models.PolicyConfig {
	return models.PolicyConfig{
		PublicKey:                  old.PubKey,
		PrivateKey:                 old.PrivKey,
		ShowInComments:             old.ReComments == 1,
		ShowInRegistration:         old.ReRegistration == 1,
		BypassForRegisteredUsers:   old.ReBypass == 1,
		MinimumBypassLevel:         models.Capability(old.ReBypassLevel),
		CommentsTheme:              models.Theme(old.ReTheme),
		RegistrationTheme:          models.Theme(old.ReThemeReg),
		RecaptchaLanguage:          models.Language(old.ReLang),
		XHTMLCompliance:            old.ReXHTML == 1,
		CommentsTabIndex:           old.ReTabIndex,
		RegistrationTabIndex:       30,
		NoResponseErrorText:        old.ErrorBlank,
		IncorrectResponseErrorText: old.ErrorIncorrect,
		ServiceErrorText:           models.DefaultServiceErrorText,
	}
}
