package ehr

import (
	"time"

	"github.com/rs/zerolog/log"

	"luminahealth.io/client-go/pkg/api"
	"luminahealth.io/client-go/pkg/querycache"
)

// Service binds the clinical entities to the transport and the query
// cache. Reads go through the cache with per-view freshness windows;
// writes validate locally first, then invalidate every dependent view in
// one batch.
type Service struct {
	client *api.Client
	cache  *querycache.Cache
	now    func() time.Time
}

// NewService creates the clinical service over a transport and cache.
func NewService(client *api.Client, cache *querycache.Cache) *Service {
	return &Service{
		client: client,
		cache:  cache,
		now:    time.Now,
	}
}

// audit records access to protected health information. Logged from the
// validated record, not the raw transport payload, so the identifier is
// the one application code actually received.
func (s *Service) audit(entity, id string) {
	log.Info().
		Str("entity", entity).
		Str("entityId", id).
		Msg("PHI record accessed")
}

func (s *Service) auditWrite(entity, id, action string) {
	log.Info().
		Str("entity", entity).
		Str("entityId", id).
		Str("action", action).
		Msg("PHI record modified")
}

// RegisterUrgentViews wires the operationally hot reads onto the
// refetcher: STAT orders, critical lab results and today's schedule stay
// within their intervals regardless of foreground traffic.
func (s *Service) RegisterUrgentViews(r *querycache.Refetcher) {
	r.Register("stat-orders", STATOrdersKey, 15*time.Second, s.fetchSTATOrders)
	r.Register("critical-labs", CriticalLabsKey, 30*time.Second, s.fetchCriticalLabs)
	// Resolved per tick so the view follows the calendar day.
	r.Register("appointments-today", func() querycache.Key {
		return AppointmentsTodayKey(s.now())
	}, 60*time.Second, s.fetchAppointmentsToday)
}
