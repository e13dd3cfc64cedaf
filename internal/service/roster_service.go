package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mfreeman481/paysheet-api/internal/models"
)

// DefaultSubcontractors backs roster loads when a team's file is missing or empty.
var DefaultSubcontractors = []string{
	"Fire Sprinkler Co.",
	"HVAC Masters",
	"Electric Pros",
}

// RosterService loads and saves the per-team subcontractor lists. Loads are
// cached per team; a successful save invalidates that team's entry so the next
// load within the same process sees the new content.
type RosterService struct {
	dir      string
	defaults []string
	logger   *zap.Logger

	mu    sync.Mutex
	cache map[models.Team][]string
}

// NewRosterService constructs the service. An empty defaults slice falls back
// to the built-in three-entry list.
func NewRosterService(dir string, defaults []string, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		dir = "./rosters"
	}
	if len(defaults) == 0 {
		defaults = DefaultSubcontractors
	}
	return &RosterService{
		dir:      dir,
		defaults: defaults,
		logger:   logger,
		cache:    make(map[models.Team][]string),
	}
}

// Load returns the team's subcontractor names. It fails soft: a missing or
// empty roster file yields the default list rather than an error.
func (s *RosterService) Load(team models.Team) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache[team]; ok {
		return append([]string(nil), cached...)
	}

	names := s.read(team)
	s.cache[team] = names
	return append([]string(nil), names...)
}

func (s *RosterService) read(team models.Team) []string {
	path := s.path(team)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Sugar().Infow("roster file not found, using defaults", "team", team, "path", path)
		} else {
			s.logger.Sugar().Errorw("roster read failed, using defaults", "team", team, "path", path, "error", err)
		}
		return append([]string(nil), s.defaults...)
	}

	names := splitNames(string(data))
	if len(names) == 0 {
		s.logger.Sugar().Infow("roster file empty, using defaults", "team", team, "path", path)
		return append([]string(nil), s.defaults...)
	}

	s.logger.Sugar().Infow("roster loaded", "team", team, "count", len(names))
	return names
}

// Save overwrites the team's roster wholesale from a newline-separated blob.
// On failure the previously persisted content and the cache stand untouched.
func (s *RosterService) Save(text string, team models.Team) error {
	names := splitNames(text)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("prepare roster directory: %w", err)
	}
	path := s.path(team)
	if err := os.WriteFile(path, []byte(strings.Join(names, "\n")), 0o644); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}

	s.logger.Sugar().Infow("roster saved", "team", team, "count", len(names))
	s.Invalidate(team)
	return nil
}

// Invalidate drops the cached roster for a team.
func (s *RosterService) Invalidate(team models.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, team)
}

func (s *RosterService) path(team models.Team) string {
	return filepath.Join(s.dir, team.RosterFile())
}

func splitNames(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
