// Package yamltarget loads and saves target definitions as YAML files.
package yamltarget

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/ports"
)

type Loader struct {
	targetsDir string
}

type Option func(*Loader)

func WithTargetsDir(dir string) Option {
	return func(l *Loader) { l.targetsDir = dir }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{targetsDir: "targets"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	_ ports.TargetLoader = (*Loader)(nil)
	_ ports.TargetWriter = (*Loader)(nil)
)

func (l *Loader) LoadTarget(path string) (domain.Target, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Target{}, &domain.OpError{
			Op:   "yamltarget.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var yt yamlTarget
	if err := yaml.Unmarshal(b, &yt); err != nil {
		return domain.Target{}, &domain.OpError{
			Op:   "yamltarget.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return mapAndValidate(path, yt)
}

func (l *Loader) ListTargets(root string) ([]domain.TargetRef, error) {
	dir := filepath.Join(root, l.targetsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamltarget.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.TargetRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		p := filepath.Join(dir, name)
		n, _ := readTargetName(p)
		if strings.TrimSpace(n) == "" {
			n = strings.TrimSuffix(name, filepath.Ext(name))
		}

		refs = append(refs, domain.TargetRef{Name: n, Path: p})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// SaveTarget writes the target under the targets dir, named after a slug of
// the planet name. Refuses to overwrite unless force is set.
func (l *Loader) SaveTarget(root string, target domain.Target, force bool) (string, error) {
	dir := filepath.Join(root, l.targetsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "yamltarget.save",
			Kind: domain.KindInvalidConfig,
			Path: dir,
			Err:  err,
		}
	}

	slug := slugify(target.Name)
	if slug == "" {
		slug = "target"
	}
	path := filepath.Join(dir, slug+".yaml")

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", &domain.OpError{
				Op:   "yamltarget.save",
				Kind: domain.KindInvalidConfig,
				Path: path,
				Err:  fmt.Errorf("target file exists (use force to overwrite)"),
			}
		}
	}

	b, err := yaml.Marshal(toYAML(target))
	if err != nil {
		return "", &domain.OpError{
			Op:   "yamltarget.save",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return "", &domain.OpError{
			Op:   "yamltarget.save",
			Kind: domain.KindInvalidConfig,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "yamltarget.save",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return path, nil
}

func readTargetName(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var v struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return "", err
	}
	return v.Name, nil
}

type yamlTarget struct {
	Name string `yaml:"name"`
	TIC  int64  `yaml:"tic,omitempty"`

	Star struct {
		MassMsun    float64 `yaml:"mass_msun"`
		MassMsunErr float64 `yaml:"mass_msun_err,omitempty"`
	} `yaml:"star"`

	Ephemeris struct {
		PeriodDays   float64 `yaml:"period_days"`
		PeriodErr    float64 `yaml:"period_err,omitempty"`
		ZeroEpochBJD float64 `yaml:"zero_epoch_bjd"`
		ZeroEpochErr float64 `yaml:"zero_epoch_err,omitempty"`
	} `yaml:"ephemeris"`

	Transit struct {
		Depth        float64 `yaml:"depth"`
		DurationDays float64 `yaml:"duration_days"`
	} `yaml:"transit"`

	Data []yamlDataRef `yaml:"data"`
}

type yamlDataRef struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

func mapAndValidate(path string, yt yamlTarget) (domain.Target, error) {
	if strings.TrimSpace(yt.Name) == "" {
		return domain.Target{}, invalidField(path, "name", "target name is required")
	}

	target := domain.Target{
		Name: yt.Name,
		TIC:  yt.TIC,
		Star: domain.Star{MassMsun: domain.V(yt.Star.MassMsun, yt.Star.MassMsunErr)},
		Ephemeris: domain.Ephemeris{
			Period:    domain.V(yt.Ephemeris.PeriodDays, yt.Ephemeris.PeriodErr),
			ZeroEpoch: domain.V(yt.Ephemeris.ZeroEpochBJD, yt.Ephemeris.ZeroEpochErr),
		},
		Transit: domain.TransitShape{
			Depth:        yt.Transit.Depth,
			DurationDays: yt.Transit.DurationDays,
		},
		Data: make([]domain.DataRef, 0, len(yt.Data)),
	}

	for i, d := range yt.Data {
		fieldPrefix := fmt.Sprintf("data[%d]", i)
		if strings.TrimSpace(d.Path) == "" {
			return domain.Target{}, invalidField(path, fieldPrefix+".path", "data path is required")
		}
		format, err := domain.ParseDataFormat(d.Format)
		if err != nil {
			return domain.Target{}, invalidField(path, fieldPrefix+".format", err.Error())
		}
		target.Data = append(target.Data, domain.DataRef{Path: d.Path, Format: format})
	}

	if err := target.Validate(); err != nil {
		return domain.Target{}, err
	}
	return target, nil
}

func toYAML(t domain.Target) yamlTarget {
	var yt yamlTarget
	yt.Name = t.Name
	yt.TIC = t.TIC
	yt.Star.MassMsun = t.Star.MassMsun.N
	yt.Star.MassMsunErr = t.Star.MassMsun.S
	yt.Ephemeris.PeriodDays = t.Ephemeris.Period.N
	yt.Ephemeris.PeriodErr = t.Ephemeris.Period.S
	yt.Ephemeris.ZeroEpochBJD = t.Ephemeris.ZeroEpoch.N
	yt.Ephemeris.ZeroEpochErr = t.Ephemeris.ZeroEpoch.S
	yt.Transit.Depth = t.Transit.Depth
	yt.Transit.DurationDays = t.Transit.DurationDays
	for _, d := range t.Data {
		yt.Data = append(yt.Data, yamlDataRef{Path: d.Path, Format: string(d.Format)})
	}
	return yt
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamltarget.validate",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s", field, msg),
	}
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
