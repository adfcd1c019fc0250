package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
	"github.com/noah-isme/logistics-tracker-api/pkg/export"
	"github.com/noah-isme/logistics-tracker-api/pkg/signing"
)

const (
	defaultParcelPageSize = 50
	maxParcelPageSize     = 200
)

type parcelStore interface {
	GetUser(id int) (models.User, bool)
	GetParcel(id int) (models.Parcel, bool)
	GetParcelByTrackingNumber(trackingNumber string) (models.Parcel, bool)
	ListParcels() []models.Parcel
	ListParcelsByUserID(userID int) []models.Parcel
	CreateParcel(input models.ParcelInput) (models.Parcel, error)
	UpdateParcel(id int, patch models.ParcelPatch) (models.Parcel, bool)
	DeleteParcel(id int) bool
	GetRouteByParcelID(parcelID int) (models.Route, bool)
}

type parcelNotifier interface {
	NotifyParcelOwner(ctx context.Context, parcel models.Parcel, kind models.NotificationType, message string) (*models.Notification, error)
}

type trackingLinkSigner interface {
	Sign(trackingNumber string) (string, time.Time, error)
	Verify(token string) (string, time.Time, error)
}

// ParcelServiceConfig tunes parcel behaviour.
type ParcelServiceConfig struct {
	// TrackingURLPrefix is prepended to signed tokens, e.g. "/api/v1/track/".
	TrackingURLPrefix string
}

// ParcelService owns parcel lifecycle rules on top of the storage facade.
type ParcelService struct {
	store     parcelStore
	notifier  parcelNotifier
	cache     *CacheService
	audit     auditRecorder
	signer    trackingLinkSigner
	exporters map[string]export.Exporter
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ParcelServiceConfig
	now       func() time.Time
}

// ParcelServiceParams groups constructor dependencies.
type ParcelServiceParams struct {
	Store     parcelStore
	Notifier  parcelNotifier
	Cache     *CacheService
	Audit     auditRecorder
	Signer    trackingLinkSigner
	Exporters []export.Exporter
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    ParcelServiceConfig
}

// NewParcelService constructs a ParcelService. CSV and PDF exporters are
// registered when none are supplied.
func NewParcelService(params ParcelServiceParams) *ParcelService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	exporters := params.Exporters
	if len(exporters) == 0 {
		exporters = []export.Exporter{export.NewCSVExporter(), export.NewPDFExporter()}
	}
	byFormat := make(map[string]export.Exporter, len(exporters))
	for _, e := range exporters {
		byFormat[e.Extension()] = e
	}
	cfg := params.Config
	if cfg.TrackingURLPrefix == "" {
		cfg.TrackingURLPrefix = "/track/"
	}
	return &ParcelService{
		store:     params.Store,
		notifier:  params.Notifier,
		cache:     params.Cache,
		audit:     params.Audit,
		signer:    params.Signer,
		exporters: byFormat,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the parcels visible to the caller matching the filter, newest first.
func (s *ParcelService) List(ctx context.Context, claims models.SessionClaims, filter dto.ParcelFilter) ([]models.Parcel, *models.Pagination, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parcel filter")
	}
	matched := s.filter(claims, filter)

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = defaultParcelPageSize
	}
	if size > maxParcelPageSize {
		size = maxParcelPageSize
	}
	start, end := pageBounds(page, size, len(matched))
	return matched[start:end], &models.Pagination{Page: page, PageSize: size, TotalCount: len(matched)}, nil
}

func (s *ParcelService) filter(claims models.SessionClaims, filter dto.ParcelFilter) []models.Parcel {
	var parcels []models.Parcel
	if claims.Role.IsOperator() {
		parcels = s.store.ListParcels()
	} else {
		parcels = s.store.ListParcelsByUserID(claims.UserID)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.Parcel, 0, len(parcels))
	for _, p := range parcels {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.TransportMode != "" && p.TransportMode != filter.TransportMode {
			continue
		}
		if search != "" && !parcelMatches(p, search) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func parcelMatches(p models.Parcel, search string) bool {
	return strings.Contains(strings.ToLower(p.TrackingNumber), search) ||
		strings.Contains(strings.ToLower(p.Origin), search) ||
		strings.Contains(strings.ToLower(p.Destination), search)
}

// Get returns a parcel visible to the caller. Parcels owned by someone else
// are reported as missing to senders.
func (s *ParcelService) Get(ctx context.Context, claims models.SessionClaims, id int) (*models.Parcel, error) {
	parcel, ok := s.store.GetParcel(id)
	if !ok || !canSeeParcel(claims, parcel) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parcel not found")
	}
	return &parcel, nil
}

// Track looks a parcel up by tracking number and returns its public view.
func (s *ParcelService) Track(ctx context.Context, trackingNumber string) (*dto.PublicParcelView, error) {
	trackingNumber = strings.ToUpper(strings.TrimSpace(trackingNumber))
	if trackingNumber == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tracking number is required")
	}
	parcel, ok := s.store.GetParcelByTrackingNumber(trackingNumber)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parcel not found")
	}
	view := s.publicView(parcel)
	return &view, nil
}

// Create registers a parcel. Senders always own what they create; staff and
// admin may create on behalf of an existing user.
func (s *ParcelService) Create(ctx context.Context, claims models.SessionClaims, req dto.CreateParcelRequest) (*models.Parcel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parcel payload")
	}
	owner := claims.UserID
	if req.UserID != nil && claims.Role.IsOperator() {
		if _, ok := s.store.GetUser(*req.UserID); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "owner does not exist")
		}
		owner = *req.UserID
	}
	input := req.ToInput(owner)
	input.TrackingNumber = strings.ToUpper(strings.TrimSpace(input.TrackingNumber))

	parcel, err := s.store.CreateParcel(input)
	if err != nil {
		return nil, err
	}
	s.logger.Info("parcel created", zap.Int("parcel_id", parcel.ID), zap.String("tracking_number", parcel.TrackingNumber), zap.Int("user_id", parcel.UserID))
	s.cache.InvalidateStats(ctx)
	return &parcel, nil
}

// Update patches a parcel. Moving to delivered stamps actualDelivery unless
// the caller supplied one, and every status change notifies the owner.
func (s *ParcelService) Update(ctx context.Context, id int, req dto.UpdateParcelRequest) (*models.Parcel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parcel payload")
	}
	previous, ok := s.store.GetParcel(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parcel not found")
	}

	patch := req.ToPatch()
	if patch.Status != nil && *patch.Status == models.ParcelStatusDelivered && patch.ActualDelivery == nil && previous.ActualDelivery == nil {
		delivered := s.now()
		patch.ActualDelivery = &delivered
	}
	updated, ok := s.store.UpdateParcel(id, patch)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parcel not found")
	}
	s.cache.InvalidateStats(ctx)

	if updated.Status != previous.Status {
		s.notifyStatusChange(ctx, updated)
	}
	return &updated, nil
}

func (s *ParcelService) notifyStatusChange(ctx context.Context, parcel models.Parcel) {
	if s.notifier == nil {
		return
	}
	kind, message := statusNotification(parcel)
	if _, err := s.notifier.NotifyParcelOwner(ctx, parcel, kind, message); err != nil {
		s.logger.Warn("status notification skipped", zap.Int("parcel_id", parcel.ID), zap.Error(err))
	}
}

func statusNotification(p models.Parcel) (models.NotificationType, string) {
	switch p.Status {
	case models.ParcelStatusDelayed:
		msg := fmt.Sprintf("Parcel %s is delayed", p.TrackingNumber)
		if p.DelayReason != nil && *p.DelayReason != "" {
			msg += ": " + *p.DelayReason
		}
		if p.DelayDuration != nil && *p.DelayDuration != "" {
			msg += " (expected delay " + *p.DelayDuration + ")"
		}
		return models.NotificationDelay, msg
	case models.ParcelStatusDelivered:
		return models.NotificationDelivery, fmt.Sprintf("Parcel %s has been delivered to %s", p.TrackingNumber, p.Destination)
	}
	return models.NotificationStatusChange, fmt.Sprintf("Parcel %s is now %s", p.TrackingNumber, strings.ReplaceAll(string(p.Status), "_", " "))
}

// Delete removes a parcel. Its routes and notifications are kept.
func (s *ParcelService) Delete(ctx context.Context, claims models.SessionClaims, id int, meta models.RequestMeta) error {
	parcel, ok := s.store.GetParcel(id)
	if !ok || !s.store.DeleteParcel(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "parcel not found")
	}
	s.logger.Info("parcel deleted", zap.Int("parcel_id", id), zap.Int("actor_id", claims.UserID))
	recordAudit(ctx, s.audit, s.logger, &claims.UserID, models.AuditActionParcelDelete, "parcel", strconv.Itoa(id), map[string]interface{}{
		"trackingNumber": parcel.TrackingNumber,
		"status":         parcel.Status,
	}, meta)
	s.cache.InvalidateStats(ctx)
	return nil
}

// IssueTrackingLink signs a public link for a parcel visible to the caller.
func (s *ParcelService) IssueTrackingLink(ctx context.Context, claims models.SessionClaims, id int) (*dto.TrackingLinkResponse, error) {
	parcel, err := s.Get(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "tracking links are not configured")
	}
	token, expiresAt, err := s.signer.Sign(parcel.TrackingNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign tracking link")
	}
	return &dto.TrackingLinkResponse{Token: token, URL: s.cfg.TrackingURLPrefix + token, ExpiresAt: expiresAt}, nil
}

// ResolveTrackingLink verifies a signed token and returns the public parcel view.
func (s *ParcelService) ResolveTrackingLink(ctx context.Context, token string) (*dto.PublicParcelView, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parcel not found")
	}
	trackingNumber, _, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, signing.ErrExpiredToken) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "tracking link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid tracking link")
	}
	parcel, ok := s.store.GetParcelByTrackingNumber(trackingNumber)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parcel not found")
	}
	view := s.publicView(parcel)
	return &view, nil
}

func (s *ParcelService) publicView(parcel models.Parcel) dto.PublicParcelView {
	var route *models.Route
	if r, ok := s.store.GetRouteByParcelID(parcel.ID); ok {
		route = &r
	}
	return dto.NewPublicParcelView(parcel, route)
}

// ExportResult is a rendered parcel manifest.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// Export renders the parcels visible to the caller as a manifest. Paging in
// the filter is ignored.
func (s *ParcelService) Export(ctx context.Context, claims models.SessionClaims, filter dto.ParcelFilter, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err := s.validator.Struct(filter); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parcel filter")
	}

	parcels := s.filter(claims, filter)
	body, err := exporter.Render(parcelManifest(parcels, s.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("parcels-%s.%s", s.now().Format("20060102-150405"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
		Rows:        len(parcels),
	}, nil
}

func parcelManifest(parcels []models.Parcel, generated time.Time) export.Table {
	table := export.Table{
		Title: "Parcel manifest " + generated.Format("2006-01-02 15:04 MST"),
		Columns: []export.Column{
			{Title: "Tracking #", Width: 32},
			{Title: "Origin"},
			{Title: "Destination"},
			{Title: "Status", Width: 28},
			{Title: "Mode", Width: 24},
			{Title: "Weight (kg)", Width: 24},
			{Title: "Location"},
			{Title: "ETA", Width: 28},
		},
		Rows: make([][]string, 0, len(parcels)),
	}
	for _, p := range parcels {
		table.Rows = append(table.Rows, []string{
			p.TrackingNumber,
			p.Origin,
			p.Destination,
			string(p.Status),
			string(p.TransportMode),
			strconv.FormatFloat(p.Weight, 'f', 2, 64),
			deref(p.CurrentLocation),
			formatDate(p.EstimatedDelivery),
		})
	}
	return table
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
