package itinerary

import (
	"context"
	"errors"
	"fmt"

	"backend-itinerary/internal/auth"
	"backend-itinerary/internal/notify"
	"backend-itinerary/internal/planner"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type Generator interface {
	Generate(ctx context.Context, travelerID string, prefs planner.Preferences) (planner.Draft, error)
	Settings() planner.Settings
}

type Notifier interface {
	Notify(ctx context.Context, n notify.Notification) error
}

type Handler struct {
	engine   Generator
	store    *Store
	notifier Notifier
	log      zerolog.Logger
}

// NewHandler wires the generate/save/get routes. notifier may be nil.
func NewHandler(engine Generator, store *Store, notifier Notifier, log zerolog.Logger) *Handler {
	return &Handler{engine: engine, store: store, notifier: notifier, log: log}
}

func RegisterRoutes(r fiber.Router, h *Handler, authMiddleware fiber.Handler) {
	r.Post("/generate", authMiddleware, h.generate)
	r.Post("/", authMiddleware, h.save)
	r.Get("/:id", h.get)
}

func travelerID(c *fiber.Ctx) (string, error) {
	id, ok := auth.UserID(c)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "missing user")
	}
	return id, nil
}

func (h *Handler) generate(c *fiber.Ctx) error {
	userID, err := travelerID(c)
	if err != nil {
		return err
	}
	var prefs planner.Preferences
	if err := c.BodyParser(&prefs); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	draft, err := h.engine.Generate(c.Context(), userID, prefs)
	if err != nil {
		var verr *planner.ValidationError
		var empty *planner.NoCandidatesError
		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": planner.ErrInvalidPreferences.Error(), "problems": verr.Problems})
		case errors.As(err, &empty):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": planner.ErrNoExperiences.Error(), "diagnostics": empty.Breakdown})
		default:
			h.log.Error().Err(err).Str("traveler_id", userID).Msg("generate itinerary")
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(draft)
}

func (h *Handler) save(c *fiber.Ctx) error {
	userID, err := travelerID(c)
	if err != nil {
		return err
	}
	var draft planner.Draft
	if err := c.BodyParser(&draft); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	draft.TravelerID = userID
	if draft.Title == "" {
		draft.Title = fmt.Sprintf("%s - %s to %s", draft.Area, draft.StartDate, draft.EndDate)
	}
	if err := planner.VerifyDraft(draft, h.engine.Settings().Buffer); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result, err := h.store.Save(c.Context(), draft)
	if errors.Is(err, ErrUnknownExperience) || errors.Is(err, planner.ErrInvalidDraft) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		h.log.Error().Err(err).Str("traveler_id", userID).Msg("save itinerary")
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	h.announce(c.Context(), result)
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *Handler) get(c *fiber.Ctx) error {
	it, err := h.store.Get(c.Context(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "itinerary not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(it)
}

// announce tells the traveler and every host about the saved itinerary.
// Failures are logged and never affect the response.
func (h *Handler) announce(ctx context.Context, result SaveResult) {
	if h.notifier == nil {
		return
	}
	it := result.Itinerary
	notes := []notify.Notification{{
		Kind:        notify.KindItineraryCreated,
		RecipientID: it.TravelerID,
		Title:       "Itinerary saved",
		Message:     fmt.Sprintf("%s with %d booking(s)", it.Title, len(result.Bookings)),
		ItineraryID: it.ID,
	}}
	for _, b := range result.Bookings {
		notes = append(notes, notify.Notification{
			Kind:        notify.KindBookingRequested,
			RecipientID: b.HostID,
			Title:       "New booking request",
			Message:     fmt.Sprintf("Booking on %s from %s to %s", b.BookingDate, b.Start, b.End),
			ItineraryID: it.ID,
			BookingID:   b.ID,
		})
	}
	for _, n := range notes {
		if err := h.notifier.Notify(ctx, n); err != nil {
			h.log.Warn().Err(err).Str("kind", n.Kind).Str("recipient_id", n.RecipientID).Msg("notification not sent")
		}
	}
}
