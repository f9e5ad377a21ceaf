package script

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ExecutionProfile captures the engine-specific timing quirks the core
// reproduces.
type ExecutionProfile struct {
	Name string
	// UsesLegacyTiming enables readiness-state notification, deferred
	// execution and unconditional execution on src changes.
	UsesLegacyTiming bool
	Version          int
	// SkipsPseudoURLAtVersion ignores javascript: sources when it equals
	// Version. Zero disables the carve-out.
	SkipsPseudoURLAtVersion int
}

// SkipsPseudoURL reports whether javascript: sources are ignored.
func (p ExecutionProfile) SkipsPseudoURL() bool {
	return p.UsesLegacyTiming && p.SkipsPseudoURLAtVersion != 0 && p.Version == p.SkipsPseudoURLAtVersion
}

var (
	Modern  = ExecutionProfile{Name: "modern", Version: 3}
	Legacy6 = ExecutionProfile{Name: "legacy-6", UsesLegacyTiming: true, Version: 6, SkipsPseudoURLAtVersion: 7}
	Legacy7 = ExecutionProfile{Name: "legacy-7", UsesLegacyTiming: true, Version: 7, SkipsPseudoURLAtVersion: 7}
	Legacy8 = ExecutionProfile{Name: "legacy-8", UsesLegacyTiming: true, Version: 8, SkipsPseudoURLAtVersion: 7}
)

var profiles = map[string]ExecutionProfile{
	Modern.Name:  Modern,
	Legacy6.Name: Legacy6,
	Legacy7.Name: Legacy7,
	Legacy8.Name: Legacy8,
}

// ErrUnknownProfile is returned by ProfileByName.
var ErrUnknownProfile = errors.New("unknown execution profile")

// ProfileByName looks up a built-in profile, ignoring case.
func ProfileByName(name string) (ExecutionProfile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ExecutionProfile{}, errors.Wrap(ErrUnknownProfile, name)
	}
	return p, nil
}

// ProfileNames lists the built-in profiles, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProfileFor derives a profile from a host that only answers the
// HostEnvironment questions.
func ProfileFor(host HostEnvironment) ExecutionProfile {
	if p, ok := host.(*Host); ok {
		return p.Profile
	}
	if !host.LegacyEmulation() {
		p := Modern
		p.Version = host.EngineVersion()
		return p
	}
	return ExecutionProfile{
		Name:                    "legacy",
		UsesLegacyTiming:        true,
		Version:                 host.EngineVersion(),
		SkipsPseudoURLAtVersion: 7,
	}
}

// Host is a HostEnvironment backed by a profile.
type Host struct {
	JavaScriptEnabled bool
	Profile           ExecutionProfile
}

func NewHost(profile ExecutionProfile) *Host {
	return &Host{JavaScriptEnabled: true, Profile: profile}
}

func (h *Host) ScriptingEnabled() bool { return h.JavaScriptEnabled }
func (h *Host) LegacyEmulation() bool  { return h.Profile.UsesLegacyTiming }
func (h *Host) EngineVersion() int     { return h.Profile.Version }
