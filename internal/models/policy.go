package models

// Capability is an authorization grant an actor may hold. Only the values in
// AllCapabilities are recognized.
type Capability string

const (
	CapRead             Capability = "read"
	CapEditPosts        Capability = "edit_posts"
	CapPublishPosts     Capability = "publish_posts"
	CapModerateComments Capability = "moderate_comments"
	CapAdministerSite   Capability = "level_10"
)

// AllCapabilities is the closed set accepted for minimum_bypass_level and in actor tokens.
var AllCapabilities = []Capability{CapRead, CapEditPosts, CapPublishPosts, CapModerateComments, CapAdministerSite}

// ParseCapability returns the capability named by s, or false if s is not one of AllCapabilities.
func ParseCapability(s string) (Capability, bool) {
	for _, c := range AllCapabilities {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// CapabilitySet is the set of capabilities held by an actor.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from raw capability names, dropping unknown ones.
func NewCapabilitySet(names ...string) CapabilitySet {
	set := make(CapabilitySet, len(names))
	for _, n := range names {
		if c, ok := ParseCapability(n); ok {
			set[c] = struct{}{}
		}
	}
	return set
}

// Has reports whether c is in the set. A nil set holds nothing.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Names returns the set's capabilities in AllCapabilities order.
func (s CapabilitySet) Names() []string {
	names := make([]string, 0, len(s))
	for _, c := range AllCapabilities {
		if s.Has(c) {
			names = append(names, string(c))
		}
	}
	return names
}

// RoleCapabilities maps the stock roles onto the capabilities they grant.
var RoleCapabilities = map[string][]Capability{
	"subscriber":    {CapRead},
	"contributor":   {CapRead, CapEditPosts},
	"author":        {CapRead, CapEditPosts, CapPublishPosts},
	"editor":        {CapRead, CapEditPosts, CapPublishPosts, CapModerateComments},
	"administrator": {CapRead, CapEditPosts, CapPublishPosts, CapModerateComments, CapAdministerSite},
}

// Theme is a widget theme token.
type Theme string

const (
	ThemeRed        Theme = "red"
	ThemeWhite      Theme = "white"
	ThemeBlackGlass Theme = "blackglass"
	ThemeClean      Theme = "clean"
)

var AllThemes = []Theme{ThemeRed, ThemeWhite, ThemeBlackGlass, ThemeClean}

// Language is a widget locale token.
type Language string

var AllLanguages = []Language{"en", "nl", "fr", "de", "pt", "ru", "es", "tr"}

// MaxTabIndex is the largest tabindex value browsers honour.
const MaxTabIndex = 32767

// PolicyConfig is the canonical, validated reCAPTCHA configuration record.
// Stored in the `options` collection under PolicyOptionName.
type PolicyConfig struct {
	PublicKey  string `bson:"public_key" json:"public_key"`
	PrivateKey string `bson:"private_key" json:"private_key"`

	ShowInComments           bool       `bson:"show_in_comments" json:"show_in_comments"`
	ShowInRegistration       bool       `bson:"show_in_registration" json:"show_in_registration"`
	BypassForRegisteredUsers bool       `bson:"bypass_for_registered_users" json:"bypass_for_registered_users"`
	MinimumBypassLevel       Capability `bson:"minimum_bypass_level" json:"minimum_bypass_level"`

	CommentsTheme        Theme    `bson:"comments_theme" json:"comments_theme"`
	RegistrationTheme    Theme    `bson:"registration_theme" json:"registration_theme"`
	RecaptchaLanguage    Language `bson:"recaptcha_language" json:"recaptcha_language"`
	XHTMLCompliance      bool     `bson:"xhtml_compliance" json:"xhtml_compliance"`
	CommentsTabIndex     int      `bson:"comments_tab_index" json:"comments_tab_index"`
	RegistrationTabIndex int      `bson:"registration_tab_index" json:"registration_tab_index"`

	NoResponseErrorText        string `bson:"no_response_error" json:"no_response_error"`
	IncorrectResponseErrorText string `bson:"incorrect_response_error" json:"incorrect_response_error"`
	ServiceErrorText           string `bson:"service_error" json:"service_error"`
}

const (
	PolicyOptionName = "recaptcha_options"
	LegacyOptionName = "recaptcha"
)

const (
	DefaultNoResponseErrorText        = "<strong>ERROR</strong>: Please fill in the reCAPTCHA form."
	DefaultIncorrectResponseErrorText = "<strong>ERROR</strong>: That reCAPTCHA response was incorrect."
	DefaultServiceErrorText           = "<strong>ERROR</strong>: The reCAPTCHA service could not be reached. Please try again later."
)

// DefaultPolicy returns the configuration of a fresh install.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		ShowInComments:             true,
		ShowInRegistration:         true,
		BypassForRegisteredUsers:   true,
		MinimumBypassLevel:         CapRead,
		CommentsTheme:              ThemeRed,
		RegistrationTheme:          ThemeRed,
		RecaptchaLanguage:          "en",
		CommentsTabIndex:           5,
		RegistrationTabIndex:       30,
		NoResponseErrorText:        DefaultNoResponseErrorText,
		IncorrectResponseErrorText: DefaultIncorrectResponseErrorText,
		ServiceErrorText:           DefaultServiceErrorText,
	}
}

// LegacyOptions is the flat option record written by the previous plugin version.
// Flags were stored as 1/0.
type LegacyOptions struct {
	PubKey         string `bson:"pubkey"`
	PrivKey        string `bson:"privkey"`
	ReComments     int    `bson:"re_comments"`
	ReRegistration int    `bson:"re_registration"`
	ReBypass       int    `bson:"re_bypass"`
	ReBypassLevel  string `bson:"re_bypasslevel"`
	ReTheme        string `bson:"re_theme"`
	ReThemeReg     string `bson:"re_theme_reg"`
	ReLang         string `bson:"re_lang"`
	ReXHTML        int    `bson:"re_xhtml"`
	ReTabIndex     int    `bson:"re_tabindex"`
	ErrorBlank     string `bson:"error_blank"`
	ErrorIncorrect string `bson:"error_incorrect"`
}
