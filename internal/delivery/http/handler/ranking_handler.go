package handler

import (
	"staffing-hub/internal/delivery/http/dto"
	"staffing-hub/internal/delivery/http/middleware"
	"staffing-hub/internal/pkg/jwt"
	"staffing-hub/internal/pkg/response"
	"staffing-hub/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type RankingHandler struct {
	uc usecase.RankingUsecase
}

func NewRankingHandler(uc usecase.RankingUsecase) *RankingHandler {
	return &RankingHandler{uc: uc}
}

func (h *RankingHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/roles/:id/candidates", middleware.RequireKind(jwt.ActorManager, jwt.ActorAdmin), h.Candidates)
}

func (h *RankingHandler) Candidates(c fiber.Ctx) error {
	roleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(err, "role id must be a uuid")
	}

	out, err := h.uc.RankCandidates(c.Context(), roleID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRankingResponse(out))
}
