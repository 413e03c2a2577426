package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// Profile is one section of the ~/.riskreadcfg file.
type Profile struct {
	Name  string
	Host  string
	Token string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

// NewRegistry loads the profile file. A missing file yields an empty registry.
func NewRegistry(path string) (Registry, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &cfgRegistry{cfg: ini.Empty()}, nil
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles from %s: %w", path, err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", name)
	}

	return &Profile{
		Name:  name,
		Host:  strings.TrimSpace(section.Key("host").String()),
		Token: strings.TrimSpace(section.Key("token").String()),
	}, nil
}

// Resolve fills the API url and token from the selected profile. Values
// already set through flags or environment win over the profile.
func Resolve(ctx context.Context, s *Settings, registry Registry, explicitURL bool) error {
	profile, err := registry.GetProfile(ctx, s.Profile)
	if err != nil {
		if s.Profile == DefaultProfile {
			return nil
		}
		return err
	}
	if !explicitURL && profile.Host != "" {
		s.APIURL = profile.Host
	}
	if s.Token == "" {
		s.Token = profile.Token
	}
	return nil
}
