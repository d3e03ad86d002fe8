package database

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"estateview/server/internal/models"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// timeLayout is the format used for timestamps written by the raw SQL paths.
// Values are always stored in UTC so that date() bucketing and lexicographic
// range comparisons agree with the reporting timezone.
const timeLayout = "2006-01-02 15:04:05"

type Database struct {
	db  *sql.DB
	orm *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; serializing the pool also keeps
	// in-memory databases on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	orm, err := gorm.Open(&sqlite.Dialector{Conn: db}, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	return &Database{db: db, orm: orm}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

func (d *Database) PropertyExists(id string) (bool, error) {
	var exists bool
	err := d.db.QueryRow("SELECT EXISTS(SELECT 1 FROM properties WHERE id = ?)", id).Scan(&exists)
	return exists, err
}

// PropertyOwner returns the owning user id of a property, or ok=false when
// the property does not exist.
func (d *Database) PropertyOwner(id string) (string, bool, error) {
	var owner string
	err := d.db.QueryRow("SELECT user_id FROM properties WHERE id = ?", id).Scan(&owner)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return owner, true, nil
}

// HasPropertyView reports whether a view is already recorded for the given
// identity. Exactly one of userID/sessionID is expected to be non-empty.
func (d *Database) HasPropertyView(propertyID, userID, sessionID string) (bool, error) {
	var exists bool
	var err error
	if userID != "" {
		err = d.db.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM property_views WHERE property_id = ? AND user_id = ?)
		`, propertyID, userID).Scan(&exists)
	} else {
		err = d.db.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM property_views WHERE property_id = ? AND session_id = ?)
		`, propertyID, sessionID).Scan(&exists)
	}
	return exists, err
}

// InsertPropertyView appends a view row. It returns inserted=false when the
// identity already has a row for this property (unique index hit), which can
// happen when two concurrent requests pass the existence check together.
func (d *Database) InsertPropertyView(v *models.PropertyView) (bool, error) {
	userID := sql.NullString{String: v.UserID, Valid: v.UserID != ""}
	sessionID := sql.NullString{String: v.SessionID, Valid: v.SessionID != ""}

	_, err := d.db.Exec(`
		INSERT INTO property_views (id, property_id, user_id, session_id, viewed_at)
		VALUES (?, ?, ?, ?, ?)
	`, v.ID, v.PropertyID, userID, sessionID, v.ViewedAt.UTC().Format(timeLayout))
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IncrementPropertyViews bumps the denormalized counter atomically in SQL, so
// concurrent recorders cannot lose an increment.
func (d *Database) IncrementPropertyViews(propertyID string) error {
	res, err := d.db.Exec("UPDATE properties SET views = views + 1 WHERE id = ?", propertyID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("property not found: %s", propertyID)
	}
	return nil
}

// PropertyViewCount returns the all-time denormalized counter for a property.
func (d *Database) PropertyViewCount(propertyID string) (int64, bool, error) {
	var count int64
	err := d.db.QueryRow("SELECT views FROM properties WHERE id = ?", propertyID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// DailyViewCounts buckets a property's recorded views by calendar date (UTC)
// from the given instant onward, oldest date first.
func (d *Database) DailyViewCounts(propertyID string, since time.Time) ([]models.DailyViewCount, error) {
	rows, err := d.db.Query(`
		SELECT date(viewed_at) AS day, COUNT(*) AS views
		FROM property_views
		WHERE property_id = ? AND viewed_at >= ?
		GROUP BY date(viewed_at)
		ORDER BY day
	`, propertyID, since.UTC().Format(timeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.DailyViewCount
	for rows.Next() {
		var c models.DailyViewCount
		if err := rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// UserViewTotals returns the sum of the denormalized counters across a user's
// properties and the number of properties.
func (d *Database) UserViewTotals(userID string) (int64, int64, error) {
	var totalViews, propertyCount int64
	err := d.db.QueryRow(`
		SELECT COALESCE(SUM(views), 0), COUNT(*)
		FROM properties
		WHERE user_id = ?
	`, userID).Scan(&totalViews, &propertyCount)
	return totalViews, propertyCount, err
}

// UserRecentViewCounts returns the number of views recorded against any of
// the user's properties since the given instant, and the number of distinct
// properties that received at least one of those views.
func (d *Database) UserRecentViewCounts(userID string, since time.Time) (int64, int64, error) {
	var recentViews, activeProperties int64
	err := d.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT pv.property_id)
		FROM property_views pv
		JOIN properties p ON p.id = pv.property_id
		WHERE p.user_id = ? AND pv.viewed_at >= ?
	`, userID, since.UTC().Format(timeLayout)).Scan(&recentViews, &activeProperties)
	return recentViews, activeProperties, err
}

// TourStatusForOwner returns the current status of a tour owned by the given
// agent. A missing tour and a tour owned by someone else are reported the
// same way (ok=false), matching the ownership-filtered update semantics.
func (d *Database) TourStatusForOwner(tourID, ownerID string) (string, bool, error) {
	var status string
	err := d.db.QueryRow(`
		SELECT status FROM tours WHERE id = ? AND property_owner_id = ?
	`, tourID, ownerID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}

// TransitionTour moves a tour from one status to another, stamping the
// transition column for the target state and updated_at. The update is
// filtered on ownership and on the expected current status, so a concurrent
// transition makes it match zero rows instead of overwriting.
func (d *Database) TransitionTour(tourID, ownerID, fromStatus, toStatus string, now time.Time) (bool, error) {
	ts := now.UTC().Format(timeLayout)

	set := "status = ?, updated_at = ?"
	args := []interface{}{toStatus, ts}
	switch toStatus {
	case models.TourStatusConfirmed:
		set += ", confirmed_at = ?"
		args = append(args, ts)
	case models.TourStatusCancelled:
		set += ", cancelled_at = ?"
		args = append(args, ts)
	case models.TourStatusCompleted:
		set += ", completed_at = ?"
		args = append(args, ts)
	}
	args = append(args, tourID, ownerID, fromStatus)

	res, err := d.db.Exec(fmt.Sprintf(`
		UPDATE tours SET %s WHERE id = ? AND property_owner_id = ? AND status = ?
	`, set), args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SaveTourFeedback attaches the agent's post-tour report, filtered on
// ownership like every other tour mutation.
func (d *Database) SaveTourFeedback(tourID, ownerID string, fb models.TourFeedback, now time.Time) (bool, error) {
	res, err := d.db.Exec(`
		UPDATE tours
		SET agent_feedback = ?, agent_rating = ?, agent_notes = ?,
		    follow_up_required = ?, follow_up_date = ?, follow_up_notes = ?,
		    updated_at = ?
		WHERE id = ? AND property_owner_id = ?
	`, fb.Feedback, fb.Rating, fb.Notes,
		fb.FollowUpRequired, fb.FollowUpDate, fb.FollowUpNotes,
		now.UTC().Format(timeLayout), tourID, ownerID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// TourStatusCounts returns the number of the agent's tours per status.
func (d *Database) TourStatusCounts(ownerID string) (map[string]int64, error) {
	rows, err := d.db.Query(`
		SELECT status, COUNT(*) FROM tours WHERE property_owner_id = ? GROUP BY status
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// UpcomingTourCount counts the agent's tours scheduled strictly after the
// given day that have not been cancelled.
func (d *Database) UpcomingTourCount(ownerID string, now time.Time) (int64, error) {
	var count int64
	err := d.db.QueryRow(`
		SELECT COUNT(*) FROM tours
		WHERE property_owner_id = ? AND tour_date > ? AND status != ?
	`, ownerID, now.UTC().Format("2006-01-02"), models.TourStatusCancelled).Scan(&count)
	return count, err
}

// EnsureUserStats creates the zeroed counter row for a user if it does not
// exist yet.
func (d *Database) EnsureUserStats(userID string, now time.Time) error {
	_, err := d.db.Exec(`
		INSERT OR IGNORE INTO user_stats (user_id, updated_at) VALUES (?, ?)
	`, userID, now.UTC().Format(timeLayout))
	return err
}

// ApplyStatsDeltas adds each delta to its counter column in a single atomic
// UPDATE, so concurrent accumulations cannot lose each other's writes. The
// column names come from the accumulator's fixed allowlist, never from user
// input.
func (d *Database) ApplyStatsDeltas(userID string, deltas map[string]float64, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}

	columns := make([]string, 0, len(deltas))
	for column := range deltas {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	var set strings.Builder
	args := make([]interface{}, 0, len(deltas)+2)
	for _, column := range columns {
		fmt.Fprintf(&set, "%s = %s + ?, ", column, column)
		args = append(args, deltas[column])
	}
	set.WriteString("updated_at = ?")
	args = append(args, now.UTC().Format(timeLayout), userID)

	_, err := d.db.Exec(fmt.Sprintf("UPDATE user_stats SET %s WHERE user_id = ?", set.String()), args...)
	return err
}

// CountActiveCities counts the distinct trimmed non-empty city names among a
// user's active properties. Comparison is case-sensitive: only surrounding
// whitespace is normalized.
func (d *Database) CountActiveCities(userID string) (int64, error) {
	var count int64
	err := d.db.QueryRow(`
		SELECT COUNT(DISTINCT TRIM(city))
		FROM properties
		WHERE user_id = ? AND status = ? AND TRIM(COALESCE(city, '')) != ''
	`, userID, models.PropertyStatusActive).Scan(&count)
	return count, err
}

// SetTotalCities replaces the total_cities counter with a recomputed value.
func (d *Database) SetTotalCities(userID string, n int64, now time.Time) error {
	_, err := d.db.Exec(`
		UPDATE user_stats SET total_cities = ?, updated_at = ? WHERE user_id = ?
	`, n, now.UTC().Format(timeLayout), userID)
	return err
}

func (d *Database) GetUserStats(userID string) (*models.UserStats, bool, error) {
	var s models.UserStats
	err := d.db.QueryRow(`
		SELECT user_id, total_properties, properties_for_sale, properties_for_rent,
		       total_customers, total_cities, total_revenue, monthly_revenue,
		       total_leads, active_leads, converted_leads, updated_at
		FROM user_stats WHERE user_id = ?
	`, userID).Scan(
		&s.UserID,
		&s.TotalProperties,
		&s.PropertiesForSale,
		&s.PropertiesForRent,
		&s.TotalCustomers,
		&s.TotalCities,
		&s.TotalRevenue,
		&s.MonthlyRevenue,
		&s.TotalLeads,
		&s.ActiveLeads,
		&s.ConvertedLeads,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &s, true, nil
}
