package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"careassign/internal/model"
	"careassign/internal/opt"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// MigrateDir applies every .sql file in dir in lexical order (dev helper).
func (p *Postgres) MigrateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil { return err }
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, n := range names {
		b, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil { return err }
		if _, err := p.db.Exec(string(b)); err != nil { return err }
	}
	return nil
}

const visitCols = `id::text, client_id::text, COALESCE(client_name,''), lat, lng, scheduled_start, scheduled_end,
	COALESCE(service_type,''), COALESCE(array_to_string(required_skills, ','),''), COALESCE(caregiver_id::text,'')`

func (p *Postgres) FetchUnassignedVisits(ctx context.Context, orgID string, start, end time.Time, clientID string) ([]model.Visit, error) {
	var rows *sql.Rows
	var err error
	if clientID != "" {
		rows, err = p.db.QueryContext(ctx, `SELECT `+visitCols+` FROM visits
			WHERE org_id=$1 AND caregiver_id IS NULL AND scheduled_start >= $2 AND scheduled_start < $3 AND client_id=$4
			ORDER BY scheduled_start, id`, orgID, start, end, clientID)
	} else {
		rows, err = p.db.QueryContext(ctx, `SELECT `+visitCols+` FROM visits
			WHERE org_id=$1 AND caregiver_id IS NULL AND scheduled_start >= $2 AND scheduled_start < $3
			ORDER BY scheduled_start, id`, orgID, start, end)
	}
	if err != nil { return nil, err }
	defer rows.Close()
	return scanVisits(rows, orgID)
}

func (p *Postgres) FetchCommittedVisits(ctx context.Context, orgID string, start, end time.Time) ([]model.Visit, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+visitCols+` FROM visits
		WHERE org_id=$1 AND caregiver_id IS NOT NULL AND scheduled_start >= $2 AND scheduled_start < $3
		ORDER BY scheduled_start, id`, orgID, start, end)
	if err != nil { return nil, err }
	defer rows.Close()
	return scanVisits(rows, orgID)
}

func scanVisits(rows *sql.Rows, orgID string) ([]model.Visit, error) {
	out := []model.Visit{}
	for rows.Next() {
		var v model.Visit
		var skills string
		if err := rows.Scan(&v.ID, &v.ClientID, &v.ClientName, &v.Location.Lat, &v.Location.Lng,
			&v.Start, &v.End, &v.ServiceType, &skills, &v.CaregiverID); err != nil {
			return nil, err
		}
		v.OrgID = orgID
		v.RequiredSkills = splitSkills(skills)
		out = append(out, v)
	}
	return out, rows.Err()
}

// CommitAssignment writes one assignment inside its own transaction and
// re-validates that the visit is still unassigned so a concurrent run or
// clock-in event cannot double-commit.
func (p *Postgres) CommitAssignment(ctx context.Context, orgID, visitID, caregiverID string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil { return err }
	defer func() { _ = tx.Rollback() }()

	var current sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT caregiver_id::text FROM visits WHERE org_id=$1 AND id=$2 FOR UPDATE`, orgID, visitID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) { return ErrNotFound }
	if err != nil { return err }
	if current.Valid && current.String != "" { return ErrAlreadyAssigned }

	if _, err := tx.ExecContext(ctx, `UPDATE visits SET caregiver_id=$1, assigned_at=now() WHERE org_id=$2 AND id=$3`, caregiverID, orgID, visitID); err != nil {
		return err
	}
	return tx.Commit()
}

func (p *Postgres) FetchAvailableCaregivers(ctx context.Context, orgID string, start, end time.Time) ([]model.Caregiver, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id::text, COALESCE(name,''), COALESCE(array_to_string(skills, ','),''), max_hours_per_week
		FROM caregivers WHERE org_id=$1 AND active ORDER BY id`, orgID)
	if err != nil { return nil, err }
	defer rows.Close()
	out := []model.Caregiver{}
	for rows.Next() {
		var cg model.Caregiver
		var skills string
		if err := rows.Scan(&cg.ID, &cg.Name, &skills, &cg.MaxHoursPerWeek); err != nil { return nil, err }
		cg.OrgID = orgID
		cg.Skills = splitSkills(skills)
		out = append(out, cg)
	}
	if err := rows.Err(); err != nil { return nil, err }

	// hours already scheduled in the window
	hrows, err := p.db.QueryContext(ctx, `SELECT caregiver_id::text, COALESCE(SUM(EXTRACT(EPOCH FROM (scheduled_end - scheduled_start)))/3600.0, 0)
		FROM visits WHERE org_id=$1 AND caregiver_id IS NOT NULL AND scheduled_start >= $2 AND scheduled_start < $3
		GROUP BY caregiver_id`, orgID, start, end)
	if err != nil { return nil, err }
	defer hrows.Close()
	hours := map[string]float64{}
	for hrows.Next() {
		var id string
		var h float64
		if err := hrows.Scan(&id, &h); err != nil { return nil, err }
		hours[id] = h
	}
	if err := hrows.Err(); err != nil { return nil, err }

	// most recent committed visit per caregiver in the window
	lrows, err := p.db.QueryContext(ctx, `SELECT DISTINCT ON (caregiver_id) caregiver_id::text, lat, lng, scheduled_end
		FROM visits WHERE org_id=$1 AND caregiver_id IS NOT NULL AND scheduled_start >= $2 AND scheduled_start < $3
		ORDER BY caregiver_id, scheduled_end DESC`, orgID, start, end)
	if err != nil { return nil, err }
	defer lrows.Close()
	type lastVisit struct {
		loc model.GeoPoint
		end time.Time
	}
	last := map[string]lastVisit{}
	for lrows.Next() {
		var id string
		var lv lastVisit
		if err := lrows.Scan(&id, &lv.loc.Lat, &lv.loc.Lng, &lv.end); err != nil { return nil, err }
		last[id] = lv
	}
	if err := lrows.Err(); err != nil { return nil, err }

	for i := range out {
		out[i].ScheduledHours = hours[out[i].ID]
		if lv, ok := last[out[i].ID]; ok {
			loc := lv.loc
			end := lv.end
			out[i].LastLocation = &loc
			out[i].LastVisitEnd = &end
		}
	}
	return out, nil
}

func (p *Postgres) FetchAvailabilityWindow(ctx context.Context, caregiverID string, weekday time.Weekday) (model.DayWindow, error) {
	var w model.DayWindow
	err := p.db.QueryRowContext(ctx, `SELECT window_start, window_end FROM availability_windows
		WHERE caregiver_id=$1 AND weekday=$2`, caregiverID, int(weekday)).Scan(&w.Start, &w.End)
	if errors.Is(err, sql.ErrNoRows) { return w, ErrNotFound }
	if err != nil { return w, err }
	return w, nil
}

func (p *Postgres) FetchApprovedTimeOff(ctx context.Context, caregiverID string, start, end time.Time) ([]model.Interval, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT starts_at, ends_at FROM time_off
		WHERE caregiver_id=$1 AND status='approved' AND starts_at < $3 AND ends_at > $2
		ORDER BY starts_at`, caregiverID, start, end)
	if err != nil { return nil, err }
	defer rows.Close()
	out := []model.Interval{}
	for rows.Next() {
		var iv model.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil { return nil, err }
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (p *Postgres) SavePassMetrics(ctx context.Context, rec PassRecord) error {
	b, err := json.Marshal(rec.Metrics)
	if err != nil { return err }
	_, err = p.db.ExecContext(ctx, `INSERT INTO pass_metrics (id, org_id, window_start, window_end, run_id, metrics, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())`, uuid.New(), rec.OrgID, rec.WindowStart, rec.WindowEnd, nullIfEmpty(rec.RunID), b)
	return err
}

func (p *Postgres) ListPassMetrics(ctx context.Context, orgID string, start, end time.Time) ([]PassRecord, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT COALESCE(run_id,''), window_start, window_end, metrics, created_at
		FROM pass_metrics WHERE org_id=$1 AND window_start >= $2 AND window_start <= $3
		ORDER BY created_at`, orgID, start, end)
	if err != nil { return nil, err }
	defer rows.Close()
	out := []PassRecord{}
	for rows.Next() {
		var r PassRecord
		var b []byte
		if err := rows.Scan(&r.RunID, &r.WindowStart, &r.WindowEnd, &b, &r.CreatedAt); err != nil { return nil, err }
		r.OrgID = orgID
		if err := json.Unmarshal(b, &r.Metrics); err != nil { return nil, err }
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) GetTuning(ctx context.Context, orgID string) (opt.Tuning, error) {
	var b []byte
	err := p.db.QueryRowContext(ctx, `SELECT cfg FROM optimizer_settings WHERE org_id=$1`, orgID).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) { return opt.Tuning{}, ErrNotFound }
	if err != nil { return opt.Tuning{}, err }
	var tn opt.Tuning
	if err := json.Unmarshal(b, &tn); err != nil { return opt.Tuning{}, err }
	return tn, nil
}

func (p *Postgres) SaveTuning(ctx context.Context, orgID string, tn opt.Tuning) error {
	b, err := json.Marshal(tn)
	if err != nil { return err }
	_, err = p.db.ExecContext(ctx, `INSERT INTO optimizer_settings (org_id, cfg, updated_at) VALUES ($1,$2,now())
		ON CONFLICT (org_id) DO UPDATE SET cfg=EXCLUDED.cfg, updated_at=now()`, orgID, b)
	return err
}

// Helpers
func nullIfEmpty(s string) any { if s == "" { return nil }; return s }

func splitSkills(s string) model.SkillSet {
	if s == "" {
		return model.SkillSet{}
	}
	return model.NewSkillSet(strings.Split(s, ",")...)
}
