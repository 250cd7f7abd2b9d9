package scan

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lakshaymaurya-felt/macsysclean/internal/core"
)

// Timeouts for read-only tool queries.
const (
	BrewCacheTimeout     = 10 * time.Second
	DockerDFTimeout      = 30 * time.Second
	ListSnapshotsTimeout = 10 * time.Second
)

// ErrUnexpectedCache is returned when `brew --cache` points outside the
// known Homebrew cache locations.
var ErrUnexpectedCache = errors.New("unexpected homebrew cache location")

const snapshotPrefix = "com.apple.TimeMachine."

// dockerDFFormat selects the columns parsed by parseDockerDF.
const dockerDFFormat = "{{.Type}}\t{{.Size}}\t{{.Reclaimable}}"

// reclaimableTypes are the `docker system df` rows that prune can free.
var reclaimableTypes = map[string]bool{
	"images":        true,
	"containers":    true,
	"local volumes": true,
	"build cache":   true,
}

var dockerSizeRe = regexp.MustCompile(`(?i)^([\d.]+)\s*(B|KB|MB|GB|TB)`)

var dockerUnits = map[string]int64{
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

func isAbsent(err error) bool {
	return errors.Is(err, core.ErrToolNotFound)
}

// Snapshots lists local Time Machine snapshot identifiers (dates).
func (s *Scanner) Snapshots(ctx context.Context) ([]string, error) {
	tmutil, err := core.FindExecutable([]string{s.env.TmutilPath})
	if err != nil {
		return nil, err
	}
	out, err := s.runner.Output(ctx, ListSnapshotsTimeout, tmutil, "listlocalsnapshots", "/")
	if err != nil {
		return nil, err
	}
	return ParseSnapshots(out), nil
}

// ParseSnapshots extracts snapshot dates from `tmutil listlocalsnapshots`
// output, e.g. "com.apple.TimeMachine.2024-01-02-030405.local".
func ParseSnapshots(out []byte) []string {
	var snaps []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, snapshotPrefix) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(line, snapshotPrefix), ".local")
		if id != "" {
			snaps = append(snaps, id)
		}
	}
	return snaps
}

// Brew returns the Homebrew binary.
func (s *Scanner) Brew() (string, error) {
	return core.FindExecutable(s.env.BrewPaths)
}

// BrewCache asks Homebrew for its download cache and checks that it lives
// under one of the expected prefixes.
func (s *Scanner) BrewCache(ctx context.Context) (string, error) {
	brew, err := s.Brew()
	if err != nil {
		return "", err
	}
	out, err := s.runner.Output(ctx, BrewCacheTimeout, brew, "--cache")
	if err != nil {
		return "", err
	}
	cache := strings.TrimSpace(string(out))
	if cache == "" || !filepath.IsAbs(cache) {
		return "", fmt.Errorf("%w: %q", ErrUnexpectedCache, cache)
	}
	cache = filepath.Clean(cache)
	for _, prefix := range s.env.BrewCachePrefixes {
		if withinPrefix(cache, prefix) {
			return cache, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnexpectedCache, cache)
}

func withinPrefix(path, prefix string) bool {
	prefix = filepath.Clean(prefix)
	return path == prefix || strings.HasPrefix(path, prefix+string(filepath.Separator))
}

// Docker returns the docker CLI binary.
func (s *Scanner) Docker() (string, error) {
	return core.FindExecutable(s.env.DockerPaths)
}

// DockerReclaimable sums the reclaimable bytes reported by
// `docker system df`.
func (s *Scanner) DockerReclaimable(ctx context.Context) (int64, error) {
	docker, err := s.Docker()
	if err != nil {
		return 0, err
	}
	out, err := s.runner.Output(ctx, DockerDFTimeout, docker, "system", "df", "--format", dockerDFFormat)
	if err != nil {
		return 0, err
	}
	return parseDockerDF(out), nil
}

func parseDockerDF(out []byte) int64 {
	var sum int64
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) < 3 {
			continue
		}
		if !reclaimableTypes[strings.ToLower(strings.TrimSpace(fields[0]))] {
			continue
		}
		sum += ParseDockerSize(fields[2])
	}
	return sum
}

// ParseDockerSize converts a docker size such as "1.5GB" or "512MB (40%)"
// to bytes using binary multiples. Unparseable input yields 0.
func ParseDockerSize(s string) int64 {
	m := dockerSizeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return int64(v * float64(dockerUnits[strings.ToUpper(m[2])]))
}
