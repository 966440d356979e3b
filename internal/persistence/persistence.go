package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/markusressel/tcoracle/internal/session"
	"github.com/markusressel/tcoracle/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketReports = "reports"
)

type Persistence interface {
	Init() error

	SaveReport(report *session.Report) error
	LoadReport(id string) (*session.Report, error)
	// ListReports returns all stored reports without their results, newest first
	ListReports() ([]*session.Report, error)
	DeleteReport(id string) error
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	// get parent path of dbPath
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		// create directory
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return err
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SaveReport stores a report, replacing any report with the same id
func (p persistence) SaveReport(report *session.Report) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketReports))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return b.Put([]byte(report.ID), data)
	})
}

// LoadReport loads a single report, os.ErrNotExist if there is none with the given id
func (p persistence) LoadReport(id string) (*session.Report, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var report *session.Report
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketReports))
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get([]byte(id))
		if v == nil {
			return os.ErrNotExist
		}

		report = &session.Report{}
		if err := json.Unmarshal(v, report); err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved report %s: %v", id, err)
			if err := b.Delete([]byte(id)); err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", id, err)
			}
			report = nil
			return os.ErrNotExist
		}
		return nil
	})

	return report, err
}

func (p persistence) ListReports() ([]*session.Report, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var result []*session.Report
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketReports))
		if b == nil {
			// nothing stored yet
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			report := &session.Report{}
			if err := json.Unmarshal(v, report); err != nil {
				ui.Warning("Skipping unreadable report %s: %v", string(k), err)
				return nil
			}
			report.Results = nil
			result = append(result, report)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Started.After(result[j].Started)
	})
	return result, nil
}

func (p persistence) DeleteReport(id string) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketReports))
		if b == nil {
			// no report bucket yet
			return nil
		}
		return b.Delete([]byte(id))
	})
}
