// Package provider implements the machine-translation services autopo can
// delegate to. Every service sits behind the Translator interface and is
// constructed by New from a provider id and a set of credentials.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	Google      = "google"
	GoogleCloud = "google-cloud"
	MyMemory    = "mymemory"
	DeepL       = "deepl"
	Libre       = "libre"
	Microsoft   = "microsoft"
	Yandex      = "yandex"
	Papago      = "papago"
	QCRI        = "qcri"
	OpenAI      = "openai"
)

// DefaultID is used when neither the config file nor the command line
// names a provider.
const DefaultID = Google

// Info describes a provider for listings.
type Info struct {
	ID   string
	Name string
	// Settings lists the environment variables the provider reads.
	Settings []string
}

var catalogue = map[string]Info{
	Google:      {ID: Google, Name: "Google Translate (web)"},
	GoogleCloud: {ID: GoogleCloud, Name: "Google Cloud Translation", Settings: []string{"GOOGLE_TRANSLATE_KEY"}},
	MyMemory:    {ID: MyMemory, Name: "MyMemory", Settings: []string{"MYMEMORY_EMAIL"}},
	DeepL:       {ID: DeepL, Name: "DeepL", Settings: []string{"DEEPL_TRANSLATE_KEY", "DEEPL_FREE_API"}},
	Libre:       {ID: Libre, Name: "LibreTranslate", Settings: []string{"LIBRE_TRANSLATE_MIRROR_URL", "LIBRE_TRANSLATE_KEY"}},
	Microsoft:   {ID: Microsoft, Name: "Microsoft Translator", Settings: []string{"MICROSOFT_TRANSLATE_KEY", "MICROSOFT_TRANSLATE_REGION"}},
	Yandex:      {ID: Yandex, Name: "Yandex Translate", Settings: []string{"YANDEX_TRANSLATE_KEY"}},
	Papago:      {ID: Papago, Name: "Naver Papago", Settings: []string{"PAPAGO_CLIENT_ID", "PAPAGO_SECRET_KEY"}},
	QCRI:        {ID: QCRI, Name: "QCRI Machine Translation", Settings: []string{"QCRI_TRANSLATE_KEY"}},
	OpenAI:      {ID: OpenAI, Name: "OpenAI-compatible chat", Settings: []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL"}},
}

// Catalogue returns every known provider sorted by id.
func Catalogue() []Info {
	out := make([]Info, 0, len(catalogue))
	for _, info := range catalogue {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Known reports whether id names a provider.
func Known(id string) bool {
	_, ok := catalogue[id]
	return ok
}

// ---------------------------------------------------------------------------
// Interface and errors
// ---------------------------------------------------------------------------

// Translator is a machine-translation service.
type Translator interface {
	// Translate returns text translated from source to target. Codes are
	// provider codes as returned by SupportedLanguages.
	Translate(ctx context.Context, text, source, target string) (string, error)
	// SupportedLanguages maps language names to provider codes.
	SupportedLanguages(ctx context.Context) (map[string]string, error)
}

// ErrUnknownProvider is returned by New for an id that is not in the catalogue.
var ErrUnknownProvider = errors.New("unknown translation provider")

// MissingCredentialError reports a required setting that has no value.
type MissingCredentialError struct {
	Provider string
	Setting  string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("provider %q requires %s to be set", e.Provider, e.Setting)
}

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

// Credentials carries every provider setting. Field tags give the
// .autopo.yaml key and the environment variable.
type Credentials struct {
	GoogleKey       string `yaml:"google_key" envconfig:"GOOGLE_TRANSLATE_KEY"`
	MyMemoryEmail   string `yaml:"mymemory_email" envconfig:"MYMEMORY_EMAIL"`
	DeepLKey        string `yaml:"deepl_key" envconfig:"DEEPL_TRANSLATE_KEY"`
	DeepLFreeAPI    *bool  `yaml:"deepl_free_api" envconfig:"DEEPL_FREE_API"`
	LibreMirrorURL  string `yaml:"libre_mirror_url" envconfig:"LIBRE_TRANSLATE_MIRROR_URL"`
	LibreKey        string `yaml:"libre_key" envconfig:"LIBRE_TRANSLATE_KEY"`
	MicrosoftKey    string `yaml:"microsoft_key" envconfig:"MICROSOFT_TRANSLATE_KEY"`
	MicrosoftRegion string `yaml:"microsoft_region" envconfig:"MICROSOFT_TRANSLATE_REGION"`
	YandexKey       string `yaml:"yandex_key" envconfig:"YANDEX_TRANSLATE_KEY"`
	PapagoClientID  string `yaml:"papago_client_id" envconfig:"PAPAGO_CLIENT_ID"`
	PapagoSecret    string `yaml:"papago_secret_key" envconfig:"PAPAGO_SECRET_KEY"`
	QCRIKey         string `yaml:"qcri_key" envconfig:"QCRI_TRANSLATE_KEY"`
	OpenAIKey       string `yaml:"openai_key" envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `yaml:"openai_base_url" envconfig:"OPENAI_BASE_URL"`
	OpenAIModel     string `yaml:"openai_model" envconfig:"OPENAI_MODEL"`
}

// DefaultLibreMirror is the public LibreTranslate instance.
const DefaultLibreMirror = "https://libretranslate.com/"

// DeepLFree reports whether the free DeepL endpoint should be used.
// Unset means true.
func (c Credentials) DeepLFree() bool {
	return c.DeepLFreeAPI == nil || *c.DeepLFreeAPI
}

// Key returns the primary secret of a provider (its API key, or the
// client id for papago).
func (c Credentials) Key(id string) string {
	switch id {
	case GoogleCloud:
		return c.GoogleKey
	case DeepL:
		return c.DeepLKey
	case Libre:
		return c.LibreKey
	case Microsoft:
		return c.MicrosoftKey
	case Yandex:
		return c.YandexKey
	case Papago:
		return c.PapagoClientID
	case QCRI:
		return c.QCRIKey
	case OpenAI:
		return c.OpenAIKey
	case MyMemory:
		return c.MyMemoryEmail
	}
	return ""
}

// SetKey stores the primary secret of a provider. It is how --api-key
// and the credential store feed into Credentials.
func (c *Credentials) SetKey(id, key string) {
	switch id {
	case GoogleCloud:
		c.GoogleKey = key
	case DeepL:
		c.DeepLKey = key
	case Libre:
		c.LibreKey = key
	case Microsoft:
		c.MicrosoftKey = key
	case Yandex:
		c.YandexKey = key
	case Papago:
		c.PapagoClientID = key
	case QCRI:
		c.QCRIKey = key
	case OpenAI:
		c.OpenAIKey = key
	case MyMemory:
		c.MyMemoryEmail = key
	}
}

// Validate checks that every setting the provider needs is present. All
// missing settings are reported together.
func (c Credentials) Validate(id string) error {
	var err error
	require := func(value, setting string) {
		if value == "" {
			err = multierr.Append(err, &MissingCredentialError{Provider: id, Setting: setting})
		}
	}

	switch id {
	case Google, MyMemory, Libre:
	case GoogleCloud:
		require(c.GoogleKey, "GOOGLE_TRANSLATE_KEY")
	case DeepL:
		require(c.DeepLKey, "DEEPL_TRANSLATE_KEY")
	case Microsoft:
		require(c.MicrosoftKey, "MICROSOFT_TRANSLATE_KEY")
	case Yandex:
		require(c.YandexKey, "YANDEX_TRANSLATE_KEY")
	case Papago:
		require(c.PapagoClientID, "PAPAGO_CLIENT_ID")
		require(c.PapagoSecret, "PAPAGO_SECRET_KEY")
	case QCRI:
		require(c.QCRIKey, "QCRI_TRANSLATE_KEY")
	case OpenAI:
		if !isLocalURL(c.OpenAIBaseURL) {
			require(c.OpenAIKey, "OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	return err
}

// ---------------------------------------------------------------------------
// Factory
// ---------------------------------------------------------------------------

// Options tune the HTTP side of the providers.
type Options struct {
	// Timeout is the per-request timeout (default 30s).
	Timeout time.Duration
	// MaxRetries is the number of retries on 429 and 5xx responses
	// (0 means 3, negative disables retries).
	MaxRetries int
	// BaseURL overrides the service endpoint.
	BaseURL string
	// Log receives debug output; nil discards it.
	Log logrus.FieldLogger
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return 30 * time.Second
}

func (o Options) maxRetries() int {
	switch {
	case o.MaxRetries < 0:
		return 0
	case o.MaxRetries > 0:
		return o.MaxRetries
	}
	return 3
}

func (o Options) logger() logrus.FieldLogger {
	if o.Log != nil {
		return o.Log
	}
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func (o Options) baseURL(def string) string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return def
}

// New validates creds for id and returns the matching Translator.
func New(ctx context.Context, id string, creds Credentials, opts Options) (Translator, error) {
	if !Known(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	if err := creds.Validate(id); err != nil {
		return nil, err
	}

	switch id {
	case Google:
		return newGoogle(opts), nil
	case GoogleCloud:
		return newGoogleCloud(ctx, creds, opts)
	case MyMemory:
		return newMyMemory(creds, opts), nil
	case DeepL:
		return newDeepL(creds, opts), nil
	case Libre:
		return newLibre(creds, opts), nil
	case Microsoft:
		return newMicrosoft(creds, opts), nil
	case Yandex:
		return newYandex(creds, opts), nil
	case Papago:
		return newPapago(creds, opts), nil
	case QCRI:
		return newQCRI(creds, opts), nil
	default:
		return newOpenAI(creds, opts), nil
	}
}
