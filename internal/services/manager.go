package services

import (
	"context"
	"log/slog"

	"github.com/examforge/exam-link-service/internal/cache"
	"github.com/examforge/exam-link-service/internal/events"
	"github.com/examforge/exam-link-service/internal/repositories"
	"github.com/examforge/exam-link-service/internal/utils"
)

// ServiceManager bundles the service layer behind one handle for the
// handlers.
type ServiceManager interface {
	Exam() ExamService
	Taker() TakerService
	Parse() ParseService
	Export() ExportService
	Close() error
}

type serviceManager struct {
	exam   ExamService
	taker  TakerService
	parse  ParseService
	export ExportService
}

// ManagerConfig carries the dependencies the services share.
type ManagerConfig struct {
	Repo         repositories.Repository
	Attempts     cache.AttemptCounter
	Publisher    events.EventPublisher
	Logger       *slog.Logger
	Validator    *utils.Validator
	BaseURL      string
	GeminiAPIKey string
}

func NewServiceManager(ctx context.Context, cfg ManagerConfig) (ServiceManager, error) {
	parse, err := NewParseService(ctx, cfg.GeminiAPIKey, cfg.Logger)
	if err != nil {
		return nil, err
	}

	return &serviceManager{
		exam:   NewExamService(cfg.Repo, cfg.Publisher, cfg.Logger, cfg.Validator, cfg.BaseURL),
		taker:  NewTakerService(cfg.Repo, cfg.Attempts, cfg.Publisher, cfg.Logger),
		parse:  parse,
		export: NewExportService(cfg.Repo, cfg.Logger),
	}, nil
}

func (m *serviceManager) Exam() ExamService     { return m.exam }
func (m *serviceManager) Taker() TakerService   { return m.taker }
func (m *serviceManager) Parse() ParseService   { return m.parse }
func (m *serviceManager) Export() ExportService { return m.export }

func (m *serviceManager) Close() error {
	return m.taker.Close()
}
