package journal

import (
	"fmt"
	"time"
)

// Actions recorded in the journal.
const (
	ActionDisable = "disable"
	ActionEnable  = "enable"
)

// Entry is one recorded package operation.
type Entry struct {
	ID           int64
	DeviceSerial string
	Package      string
	Action       string
	Success      bool
	Detail       string // device output on success, error text on failure
	CreatedAt    time.Time
}

// Record stores the outcome of a package operation.
func (j *DB) Record(deviceSerial, pkg, action string, success bool, detail string) (int64, error) {
	res, err := j.db.Exec(
		`INSERT INTO package_ops (device_serial, package, action, success, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		deviceSerial, pkg, action, success, detail, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("record %s %s: %w", action, pkg, err)
	}
	return res.LastInsertId()
}

// History returns every recorded operation for a device, oldest first. An
// empty serial returns operations for all devices.
func (j *DB) History(deviceSerial string) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT id, device_serial, package, action, success, detail, created_at
		 FROM package_ops
		 WHERE ? = '' OR device_serial = ?
		 ORDER BY id`,
		deviceSerial, deviceSerial,
	)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.DeviceSerial, &e.Package, &e.Action, &e.Success, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DisabledPackages returns packages whose latest successful operation on the
// device was a disable, i.e. what a restore has to re-enable.
func (j *DB) DisabledPackages(deviceSerial string) ([]string, error) {
	rows, err := j.db.Query(
		`SELECT p.package
		 FROM package_ops p
		 WHERE p.device_serial = ?
		   AND p.success = 1
		   AND p.id = (SELECT MAX(q.id) FROM package_ops q
		               WHERE q.device_serial = p.device_serial
		                 AND q.package = p.package
		                 AND q.success = 1)
		   AND p.action = ?
		 ORDER BY p.id`,
		deviceSerial, ActionDisable,
	)
	if err != nil {
		return nil, fmt.Errorf("get disabled packages: %w", err)
	}
	defer rows.Close()

	var pkgs []string
	for rows.Next() {
		var pkg string
		if err := rows.Scan(&pkg); err != nil {
			return nil, fmt.Errorf("scan disabled packages: %w", err)
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, rows.Err()
}

// DeviceSummary counts recorded operations for a device.
type DeviceSummary struct {
	Operations int
	Failures   int
	Disabled   int // packages currently disabled by wearctl
}

// Summary returns operation counts for a device.
func (j *DB) Summary(deviceSerial string) (DeviceSummary, error) {
	var s DeviceSummary
	err := j.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0)
		 FROM package_ops WHERE device_serial = ?`, deviceSerial,
	).Scan(&s.Operations, &s.Failures)
	if err != nil {
		return s, fmt.Errorf("summary: %w", err)
	}
	disabled, err := j.DisabledPackages(deviceSerial)
	if err != nil {
		return s, err
	}
	s.Disabled = len(disabled)
	return s, nil
}
