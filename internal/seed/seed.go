// Package seed loads fixture data from YAML and applies it idempotently.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/hamstergame/platform/internal/repository"
	"gopkg.in/yaml.v3"
)

// File is the seed document.
type File struct {
	Groups    []Group    `yaml:"groups"`
	Users     []User     `yaml:"users"`
	Questions []Question `yaml:"questions"`
	Items     []Item     `yaml:"items"`
}

type Group struct {
	Name       string `yaml:"name"`
	InviteCode string `yaml:"inviteCode"`
}

type User struct {
	Email   string  `yaml:"email"`
	Name    string  `yaml:"name"`
	IsAdmin bool    `yaml:"admin"`
	Player  *Player `yaml:"player"`
}

type Player struct {
	Group     string `yaml:"group"`
	Job       string `yaml:"job"`
	CashCents int64  `yaml:"cashCents"`
}

type Question struct {
	Category     string   `yaml:"category"`
	Difficulty   *string  `yaml:"difficulty"`
	Prompt       string   `yaml:"prompt"`
	Answers      []string `yaml:"answers"`
	CorrectIndex int      `yaml:"correctIndex"`
}

type Item struct {
	Name           string                 `yaml:"name"`
	Category       string                 `yaml:"category"`
	BasePriceCents int64                  `yaml:"basePriceCents"`
	ImageURL       *string                `yaml:"imageUrl"`
	Meta           map[string]interface{} `yaml:"meta"`
}

// Report counts what Apply created. Existing rows are left untouched.
type Report struct {
	Groups    int
	Users     int
	Players   int
	Questions int
	Items     int
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	codes := map[string]bool{}
	for _, g := range f.Groups {
		if g.InviteCode == "" {
			return fmt.Errorf("group %q: inviteCode is required", g.Name)
		}
		codes[g.InviteCode] = true
	}
	for _, u := range f.Users {
		if err := domain.ValidateEmail(domain.NormalizeEmail(u.Email)); err != nil {
			return fmt.Errorf("user %q: %w", u.Email, err)
		}
		if p := u.Player; p != nil {
			if p.CashCents < 0 {
				return fmt.Errorf("user %q: cashCents must not be negative", u.Email)
			}
			if p.Group != "" && !codes[p.Group] {
				return fmt.Errorf("user %q: unknown group %q", u.Email, p.Group)
			}
		}
	}
	for _, q := range f.Questions {
		if q.Prompt == "" {
			return fmt.Errorf("question: prompt is required")
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Answers) {
			return fmt.Errorf("question %q: correctIndex %d out of range", q.Prompt, q.CorrectIndex)
		}
	}
	for _, it := range f.Items {
		if it.Name == "" {
			return fmt.Errorf("item: name is required")
		}
		if it.BasePriceCents < 0 {
			return fmt.Errorf("item %q: basePriceCents must not be negative", it.Name)
		}
	}
	return nil
}

// Apply writes the seed in one unit of work. Running it twice is a no-op.
func Apply(ctx context.Context, store repository.Store, f *File) (*Report, error) {
	uow, err := store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer uow.Rollback(ctx)

	var rep Report
	groups := map[string]*domain.Group{}
	for _, g := range f.Groups {
		existing, err := uow.Groups().FindByInviteCode(ctx, g.InviteCode)
		if err != nil {
			return nil, fmt.Errorf("find group %s: %w", g.InviteCode, err)
		}
		if existing == nil {
			existing = &domain.Group{Name: g.Name, InviteCode: g.InviteCode}
			if err := uow.Groups().Create(ctx, existing); err != nil {
				return nil, fmt.Errorf("create group %s: %w", g.InviteCode, err)
			}
			rep.Groups++
		}
		groups[g.InviteCode] = existing
	}

	for _, u := range f.Users {
		if err := applyUser(ctx, uow, u, groups, &rep); err != nil {
			return nil, err
		}
	}

	for _, q := range f.Questions {
		created, err := uow.Questions().InsertIfAbsent(ctx, &domain.Question{
			Category:     q.Category,
			Difficulty:   q.Difficulty,
			Prompt:       q.Prompt,
			Answers:      q.Answers,
			CorrectIndex: q.CorrectIndex,
		})
		if err != nil {
			return nil, fmt.Errorf("insert question %q: %w", q.Prompt, err)
		}
		if created {
			rep.Questions++
		}
	}

	for _, it := range f.Items {
		meta := json.RawMessage("{}")
		if len(it.Meta) > 0 {
			if meta, err = json.Marshal(it.Meta); err != nil {
				return nil, fmt.Errorf("encode meta of %q: %w", it.Name, err)
			}
		}
		created, err := uow.Catalog().InsertIfAbsent(ctx, &domain.AssetCatalogItem{
			Name:           it.Name,
			Category:       it.Category,
			BasePriceCents: it.BasePriceCents,
			ImageURL:       it.ImageURL,
			Meta:           meta,
		})
		if err != nil {
			return nil, fmt.Errorf("insert item %q: %w", it.Name, err)
		}
		if created {
			rep.Items++
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit seed: %w", err)
	}
	return &rep, nil
}

func applyUser(ctx context.Context, uow repository.UnitOfWork, u User, groups map[string]*domain.Group, rep *Report) error {
	email := domain.NormalizeEmail(u.Email)
	user, err := uow.Users().FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user %s: %w", email, err)
	}
	if user == nil {
		user = &domain.User{Email: email, Name: u.Name, IsAdmin: u.IsAdmin}
		if err := uow.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("create user %s: %w", email, err)
		}
		rep.Users++
	}
	if u.Player == nil {
		return nil
	}

	player, err := uow.Players().FindByUserID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("find player of %s: %w", email, err)
	}
	if player != nil {
		return nil
	}
	player = &domain.Player{UserID: user.ID, Job: u.Player.Job, CashCents: u.Player.CashCents}
	if g, ok := groups[u.Player.Group]; ok {
		player.GroupID = &g.ID
	}
	if err := uow.Players().Create(ctx, player); err != nil {
		return fmt.Errorf("create player of %s: %w", email, err)
	}
	rep.Players++
	return nil
}
