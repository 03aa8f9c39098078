package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Reference is the reference data offered to song and artist forms.
type Reference struct {
	DistributorPercentage int      `mapstructure:"distributorPercentage" json:"distributor_percentage"`
	Genres                []string `mapstructure:"genres" json:"genres"`
	Roles                 []string `mapstructure:"roles" json:"roles"`
}

func DefaultReference() Reference {
	return Reference{
		DistributorPercentage: 40,
		Genres: []string{
			"Funk", "Trap", "Sertanejo", "MPB", "Pagode", "Samba", "Forró",
			"Pop", "Hip Hop", "R&B", "Eletrônica", "Rock", "Country", "Jazz",
			"Clássica", "Folk", "Reggae", "Latina", "Metal", "Outro",
		},
		Roles: []string{
			"vocalist", "producer", "lyricist", "composer",
			"instrumentalist", "featured_artist", "mixer", "sound_engineer",
		},
	}
}

// HasGenre reports whether genre is listed, ignoring case.
func (r Reference) HasGenre(genre string) bool {
	_, ok := r.Genre(genre)
	return ok
}

// Genre returns the listed spelling of genre.
func (r Reference) Genre(genre string) (string, bool) {
	genre = strings.TrimSpace(genre)
	for _, g := range r.Genres {
		if strings.EqualFold(g, genre) {
			return g, true
		}
	}
	return "", false
}

type ReferenceHolder struct {
	current atomic.Value // holds Reference
}

// NewStaticReferenceHolder returns a holder that never reloads.
func NewStaticReferenceHolder(ref Reference) *ReferenceHolder {
	holder := &ReferenceHolder{}
	holder.current.Store(ref)
	return holder
}

// NewReferenceHolder reads catalog.yml and keeps watching it for changes.
func NewReferenceHolder(log *zap.Logger) (*ReferenceHolder, error) {
	log = log.Named("config.reference")
	v := viper.New()

	v.SetConfigName("catalog")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/royalti")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ROYALTI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReference()
	v.SetDefault("reference.distributorPercentage", defaults.DistributorPercentage)
	v.SetDefault("reference.genres", defaults.Genres)
	v.SetDefault("reference.roles", defaults.Roles)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		watch = false
	}

	var ref Reference
	if err := v.UnmarshalKey("reference", &ref); err != nil {
		return nil, err
	}
	if err := validateReference(ref); err != nil {
		return nil, err
	}

	holder := NewStaticReferenceHolder(ref)
	if !watch {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Reference
		if err := v.UnmarshalKey("reference", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateReference(updated); err != nil {
			log.Warn("invalid reference config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reference config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *ReferenceHolder) Get() Reference {
	return h.current.Load().(Reference)
}

func validateReference(ref Reference) error {
	if ref.DistributorPercentage < 0 || ref.DistributorPercentage > 99 {
		return errors.New("reference.distributorPercentage must be within 0..99")
	}
	if len(ref.Genres) == 0 {
		return errors.New("reference.genres cannot be empty")
	}
	if len(ref.Roles) == 0 {
		return errors.New("reference.roles cannot be empty")
	}
	return nil
}
