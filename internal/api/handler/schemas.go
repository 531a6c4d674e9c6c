package handler

import (
	"encoding/json"
	"time"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// --- Request types ---

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=citizen worker champion government"`
	Location string `json:"location"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type completeModuleRequest struct {
	ModuleSlug string `json:"moduleSlug" validate:"required"`
	Points     *int   `json:"points" validate:"omitempty,gte=0,lte=10000"`
}

// updateStatsRequest keeps the stats object raw so unknown keys can be
// rejected instead of silently dropped.
type updateStatsRequest struct {
	Stats json.RawMessage `json:"stats" validate:"required"`
}

type statsPatchRequest struct {
	GreenCredits     *int     `json:"greenCredits"`
	Level            *int     `json:"level"`
	Points           *int     `json:"points"`
	ModulesCompleted []string `json:"modulesCompleted"`
}

type createModuleRequest struct {
	Slug        string   `json:"slug" validate:"required"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Difficulty  string   `json:"difficulty" validate:"omitempty,oneof=Beginner Intermediate Advanced Easy Medium Hard"`
	Topics      []string `json:"topics"`
	Points      *int     `json:"points" validate:"omitempty,gte=0,lte=10000"`
	Path        string   `json:"path"`
	Published   *bool    `json:"published"`
}

// --- Response types ---

type statsResponse struct {
	GreenCredits     int      `json:"greenCredits"`
	Level            int      `json:"level"`
	Points           int      `json:"points"`
	ModulesCompleted []string `json:"modulesCompleted"`
}

// userResponse is the sanitized profile. It never carries the password hash.
type userResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Role      string        `json:"role"`
	Avatar    string        `json:"avatar,omitempty"`
	Location  string        `json:"location,omitempty"`
	Stats     statsResponse `json:"stats"`
	CreatedAt string        `json:"createdAt"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type userEnvelope struct {
	User userResponse `json:"user"`
}

type meResponse struct {
	User      userResponse `json:"user"`
	Dashboard string       `json:"dashboard"`
}

type activityResponse struct {
	ID                string `json:"id"`
	Kind              string `json:"kind"`
	ActorID           string `json:"actorId"`
	ModuleSlug        string `json:"moduleSlug,omitempty"`
	PointsDelta       int    `json:"pointsDelta"`
	GreenCreditsDelta int    `json:"greenCreditsDelta"`
	At                string `json:"at"`
}

type activityEnvelope struct {
	Activity []activityResponse `json:"activity"`
}

type moduleEnvelope struct {
	Module domain.Module `json:"module"`
}

type modulesEnvelope struct {
	Modules []domain.Module `json:"modules"`
}

// --- Mappers ---

func toUserResponse(u *domain.User) userResponse {
	modules := u.Stats.ModulesCompleted
	if modules == nil {
		modules = []string{}
	}
	return userResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role.String(),
		Avatar:   u.Avatar,
		Location: u.Location,
		Stats: statsResponse{
			GreenCredits:     u.Stats.GreenCredits,
			Level:            u.Stats.Level,
			Points:           u.Stats.Points,
			ModulesCompleted: modules,
		},
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toActivityResponse(items []domain.Activity) []activityResponse {
	out := make([]activityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, activityResponse{
			ID:                a.ID,
			Kind:              string(a.Kind),
			ActorID:           a.ActorID,
			ModuleSlug:        a.ModuleSlug,
			PointsDelta:       a.PointsDelta,
			GreenCreditsDelta: a.GreenCreditsDelta,
			At:                a.At.UTC().Format(time.RFC3339),
		})
	}
	return out
}
