package repositories

import (
	"sort"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerReportRepository allows one report per post and reporter.
type BadgerReportRepository struct {
	db *badger.DB
}

func NewBadgerReportRepository(db *badger.DB) *BadgerReportRepository {
	return &BadgerReportRepository{db: db}
}

func (r *BadgerReportRepository) Create(report *models.PostReport) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := mustExist(txn, key(PostKeyPrefix, report.PostID)); err != nil {
			return err
		}
		idx := key(PostReportIndex, report.PostID, ":", report.ReporterID)
		taken, err := exists(txn, idx)
		if err != nil {
			return err
		}
		if taken {
			return ErrConflict
		}

		report.ID = newID()
		if err := putEntity(txn, key(ReportKeyPrefix, report.ID), report); err != nil {
			return err
		}
		return txn.Set(idx, []byte(report.ID))
	})
}

func (r *BadgerReportRepository) GetByID(id string) (*models.PostReport, error) {
	var report models.PostReport
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, key(ReportKeyPrefix, id), &report)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns reports newest first, optionally only those with status.
func (r *BadgerReportRepository) List(status models.ReportStatus) ([]*models.PostReport, error) {
	reports := []*models.PostReport{}
	err := r.db.View(func(txn *badger.Txn) error {
		return eachValue(txn, []byte(ReportKeyPrefix), func(val []byte) error {
			var rep models.PostReport
			if err := unmarshalEntity(val, &rep); err != nil {
				return err
			}
			if status == "" || rep.Status == status {
				reports = append(reports, &rep)
			}
			return nil
		})
	})
	sort.Slice(reports, func(i, j int) bool {
		return byCreation(reports[j].CreatedAt, reports[i].CreatedAt, reports[j].ID, reports[i].ID)
	})
	return reports, err
}

// Update saves a status change. Everything but status and UpdatedAt is kept.
func (r *BadgerReportRepository) Update(report *models.PostReport) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing models.PostReport
		if err := getEntity(txn, key(ReportKeyPrefix, report.ID), &existing); err != nil {
			return err
		}
		existing.Status = report.Status
		existing.UpdatedAt = report.UpdatedAt
		*report = existing
		return putEntity(txn, key(ReportKeyPrefix, report.ID), &existing)
	})
}
