package seed

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
)

// Store is the storage surface the loader writes through.
type Store interface {
	GetUserByUsername(username string) (models.User, bool)
	CreateUser(input models.UserInput) (models.User, error)
	CreatePreference(pref models.NotificationPreference) models.NotificationPreference
	GetParcelByTrackingNumber(trackingNumber string) (models.Parcel, bool)
	CreateParcel(input models.ParcelInput) (models.Parcel, error)
	CreateRoute(input models.RouteInput) models.Route
	CreateIssue(input models.IssueInput) models.Issue
}

// File is the YAML layout of a seed file. Passwords are bcrypt hashes; plaintext is rejected.
type File struct {
	Users   []User   `yaml:"users"`
	Parcels []Parcel `yaml:"parcels"`
	Routes  []Route  `yaml:"routes"`
	Issues  []Issue  `yaml:"issues"`
}

type User struct {
	Username     string          `yaml:"username"`
	PasswordHash string          `yaml:"passwordHash"`
	Email        string          `yaml:"email"`
	FullName     string          `yaml:"fullName"`
	Role         models.UserRole `yaml:"role"`
	Phone        *string         `yaml:"phone"`
}

type Parcel struct {
	TrackingNumber    string               `yaml:"trackingNumber"`
	Owner             string               `yaml:"owner"`
	Origin            string               `yaml:"origin"`
	Destination       string               `yaml:"destination"`
	Status            models.ParcelStatus  `yaml:"status"`
	TransportMode     models.TransportMode `yaml:"transportMode"`
	Weight            float64              `yaml:"weight"`
	Dimensions        *string              `yaml:"dimensions"`
	CurrentLocation   *string              `yaml:"currentLocation"`
	DelayReason       *string              `yaml:"delayReason"`
	DelayDuration     *string              `yaml:"delayDuration"`
	EstimatedDelivery *time.Time           `yaml:"estimatedDelivery"`
}

type Route struct {
	TrackingNumber string               `yaml:"trackingNumber"`
	Path           []models.Waypoint    `yaml:"routePath"`
	TransportMode  models.TransportMode `yaml:"transportMode"`
	Duration       int                  `yaml:"duration"`
	Distance       float64              `yaml:"distance"`
	Active         *bool                `yaml:"active"`
}

type Issue struct {
	Title       string               `yaml:"title"`
	Description string               `yaml:"description"`
	Severity    models.IssueSeverity `yaml:"severity"`
	IssueType   models.IssueType     `yaml:"issueType"`
	Location    *string              `yaml:"location"`
	Affected    []string             `yaml:"affectedTrackingNumbers"`
}

// Result counts what a load created.
type Result struct {
	Users   int
	Parcels int
	Routes  int
	Issues  int
}

// LoadFile reads the seed file at path into store.
func LoadFile(path string, store Store, logger *zap.Logger) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Load(f, store, logger)
}

// Load decodes a seed document and writes it into store. Users that already
// exist are skipped; parcels and routes reference users and parcels by
// username and tracking number.
func Load(r io.Reader, store Store, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return Result{}, fmt.Errorf("decode seed file: %w", err)
	}

	var res Result
	for i, u := range file.Users {
		if _, exists := store.GetUserByUsername(u.Username); exists {
			logger.Debug("seed user exists", zap.String("username", u.Username))
			continue
		}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return res, fmt.Errorf("users[%d] %q: passwordHash is not a bcrypt hash", i, u.Username)
		}
		created, err := store.CreateUser(models.UserInput{
			Username: u.Username,
			Password: u.PasswordHash,
			Email:    u.Email,
			FullName: u.FullName,
			Role:     u.Role,
			Phone:    u.Phone,
		})
		if err != nil {
			return res, fmt.Errorf("users[%d] %q: %w", i, u.Username, err)
		}
		store.CreatePreference(models.DefaultNotificationPreference(created.ID))
		res.Users++
	}

	for i, p := range file.Parcels {
		owner, ok := store.GetUserByUsername(p.Owner)
		if !ok {
			return res, fmt.Errorf("parcels[%d]: unknown owner %q", i, p.Owner)
		}
		if _, err := store.CreateParcel(models.ParcelInput{
			TrackingNumber:    p.TrackingNumber,
			UserID:            owner.ID,
			Origin:            p.Origin,
			Destination:       p.Destination,
			Status:            p.Status,
			TransportMode:     p.TransportMode,
			Weight:            p.Weight,
			Dimensions:        p.Dimensions,
			CurrentLocation:   p.CurrentLocation,
			DelayReason:       p.DelayReason,
			DelayDuration:     p.DelayDuration,
			EstimatedDelivery: p.EstimatedDelivery,
		}); err != nil {
			return res, fmt.Errorf("parcels[%d] %q: %w", i, p.TrackingNumber, err)
		}
		res.Parcels++
	}

	for i, rt := range file.Routes {
		parcel, ok := store.GetParcelByTrackingNumber(rt.TrackingNumber)
		if !ok {
			return res, fmt.Errorf("routes[%d]: unknown parcel %q", i, rt.TrackingNumber)
		}
		active := true
		if rt.Active != nil {
			active = *rt.Active
		}
		mode := rt.TransportMode
		if mode == "" {
			mode = parcel.TransportMode
		}
		store.CreateRoute(models.RouteInput{
			ParcelID:      parcel.ID,
			RoutePath:     rt.Path,
			TransportMode: mode,
			Duration:      rt.Duration,
			Distance:      rt.Distance,
			Active:        active,
		})
		res.Routes++
	}

	for i, is := range file.Issues {
		affected := make([]int, 0, len(is.Affected))
		for _, tn := range is.Affected {
			parcel, ok := store.GetParcelByTrackingNumber(tn)
			if !ok {
				return res, fmt.Errorf("issues[%d]: unknown parcel %q", i, tn)
			}
			affected = append(affected, parcel.ID)
		}
		store.CreateIssue(models.IssueInput{
			Title:           is.Title,
			Description:     is.Description,
			Severity:        is.Severity,
			IssueType:       is.IssueType,
			AffectedParcels: affected,
			Location:        is.Location,
		})
		res.Issues++
	}

	logger.Info("seed data loaded",
		zap.Int("users", res.Users),
		zap.Int("parcels", res.Parcels),
		zap.Int("routes", res.Routes),
		zap.Int("issues", res.Issues),
	)
	return res, nil
}
