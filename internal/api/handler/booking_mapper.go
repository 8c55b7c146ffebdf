package handler

import (
	"github.com/homeman/marketplace-api/internal/core/ports"
)

// --- Service output → Response ---

func toBookingResponses(views []ports.BookingView) []bookingResponse {
	out := make([]bookingResponse, 0, len(views))
	for _, v := range views {
		out = append(out, bookingResponse{
			ID:           v.ID,
			Status:       string(v.Status),
			Rating:       v.Rating,
			CreatedAt:    v.CreatedAt,
			Client:       toClientProfile(v.Client),
			Professional: toProfessionalProfile(v.Professional),
		})
	}
	return out
}

func toClientProfile(p *ports.ProfileSnapshot) *profileResponse {
	if p == nil {
		return nil
	}
	return &profileResponse{
		ID:       p.ID,
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
		Location: p.Location,
	}
}

func toProfessionalProfile(p *ports.ProfileSnapshot) *profileResponse {
	r := toClientProfile(p)
	if r == nil {
		return nil
	}
	rating, count := p.Rating, p.ReviewCount
	r.Skills = p.Skills
	if r.Skills == nil {
		r.Skills = []string{}
	}
	r.Rating = &rating
	r.ReviewCount = &count
	return r
}
