package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleettrack/notifier/pkg/fleet"
)

// Store implements the fleet.EventStore gateway over a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a postgres-backed event store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) ListSubscribedEventTypes(ctx context.Context) ([]fleet.EventType, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT event_type FROM user_event_subscriptions ORDER BY event_type`)
	if err != nil {
		return nil, fmt.Errorf("query subscribed event types: %w", err)
	}
	defer rows.Close()

	var types []fleet.EventType
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan event type: %w", err)
		}
		types = append(types, fleet.EventType(t))
	}
	return types, rows.Err()
}

func (s *Store) ListUnsentEvents(ctx context.Context, types []fleet.EventType) ([]fleet.DeviceEvent, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT e.id, e.event_type, e.occurred_at,
		       d.id, d.name, d.unique_id,
		       COALESCE((SELECT array_agg(du.user_id ORDER BY du.user_id)
		                 FROM device_users du WHERE du.device_id = d.id), '{}'),
		       p.id, p.device_id, p.recorded_at, p.latitude, p.longitude,
		       g.id, g.name
		FROM device_events e
		JOIN devices d ON d.id = e.device_id
		LEFT JOIN positions p ON p.id = e.position_id
		LEFT JOIN geofences g ON g.id = e.geofence_id
		WHERE NOT e.notification_sent AND e.event_type = ANY($1)
		ORDER BY e.id`, names)
	if err != nil {
		return nil, fmt.Errorf("query unsent events: %w", err)
	}
	defer rows.Close()

	var events []fleet.DeviceEvent
	for rows.Next() {
		var (
			e          fleet.DeviceEvent
			eventType  string
			posID      *int64
			posDevice  *int64
			recordedAt *time.Time
			latitude   *float64
			longitude  *float64
			fenceID    *int64
			fenceName  *string
		)
		if err := rows.Scan(
			&e.ID, &eventType, &e.OccurredAt,
			&e.Device.ID, &e.Device.Name, &e.Device.UniqueID, &e.Device.UserIDs,
			&posID, &posDevice, &recordedAt, &latitude, &longitude,
			&fenceID, &fenceName,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		e.Type = fleet.EventType(eventType)
		if posID != nil && recordedAt != nil && latitude != nil && longitude != nil {
			e.Position = &fleet.Position{
				ID:        *posID,
				DeviceID:  *posDevice,
				Time:      *recordedAt,
				Latitude:  *latitude,
				Longitude: *longitude,
			}
		}
		if fenceID != nil && fenceName != nil {
			e.GeoFence = &fleet.GeoFence{ID: *fenceID, Name: *fenceName}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) ListUsers(ctx context.Context) ([]fleet.User, error) {
	return s.listUsers(ctx, false)
}

func (s *Store) ListAdministrators(ctx context.Context) ([]fleet.User, error) {
	return s.listUsers(ctx, true)
}

func (s *Store) listUsers(ctx context.Context, adminsOnly bool) ([]fleet.User, error) {
	query := `
		SELECT u.id, u.login, u.email, u.admin, u.manager_id,
		       COALESCE((SELECT array_agg(sub.event_type ORDER BY sub.event_type)
		                 FROM user_event_subscriptions sub WHERE sub.user_id = u.id), '{}'),
		       COALESCE((SELECT array_agg(ug.geofence_id ORDER BY ug.geofence_id)
		                 FROM user_geofences ug WHERE ug.user_id = u.id), '{}')
		FROM users u`
	if adminsOnly {
		query += ` WHERE u.admin`
	}
	query += ` ORDER BY u.id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []fleet.User
	for rows.Next() {
		var (
			u     fleet.User
			types []string
		)
		if err := rows.Scan(&u.ID, &u.Login, &u.Email, &u.Admin, &u.ManagerID, &types, &u.GeoFenceIDs); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		u.SubscribedTypes = make([]fleet.EventType, len(types))
		for i, t := range types {
			u.SubscribedTypes[i] = fleet.EventType(t)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const settingsColumns = `user_id, server, port, secure, use_auth, username, password,
	from_address, push_token, postmark_server_token`

func (s *Store) FindSettings(ctx context.Context, userID int64) (*fleet.NotificationSettings, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM notification_settings WHERE user_id = $1`, userID)

	ns, err := scanSettings(row)
	if err != nil {
		if isNoRows(err) {
			return nil, fleet.ErrNotFound
		}
		return nil, fmt.Errorf("query settings for user %d: %w", userID, err)
	}
	return ns, nil
}

func (s *Store) ListAdminSettings(ctx context.Context) ([]fleet.NotificationSettings, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+settingsColumns+`
		FROM notification_settings ns
		JOIN users u ON u.id = ns.user_id
		WHERE u.admin
		ORDER BY ns.user_id`)
	if err != nil {
		return nil, fmt.Errorf("query admin settings: %w", err)
	}
	defer rows.Close()

	var out []fleet.NotificationSettings
	for rows.Next() {
		ns, err := scanSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("scan settings row: %w", err)
		}
		out = append(out, *ns)
	}
	return out, rows.Err()
}

func (s *Store) CommitSentEvents(ctx context.Context, eventIDs []int64) error {
	if len(eventIDs) == 0 {
		return nil
	}
	// Single idempotent batch: already-sent ids are simply matched again.
	if _, err := s.pool.Exec(ctx,
		`UPDATE device_events SET notification_sent = TRUE WHERE id = ANY($1)`, eventIDs); err != nil {
		return fmt.Errorf("commit sent events: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettings(row rowScanner) (*fleet.NotificationSettings, error) {
	var (
		ns     fleet.NotificationSettings
		secure string
	)
	if err := row.Scan(
		&ns.UserID, &ns.Server, &ns.Port, &secure, &ns.UseAuth, &ns.Username,
		&ns.Password, &ns.FromAddress, &ns.PushToken, &ns.PostmarkServerToken,
	); err != nil {
		return nil, err
	}
	ns.Secure = fleet.SecureConnection(secure)
	return &ns, nil
}

var _ fleet.EventStore = (*Store)(nil)
