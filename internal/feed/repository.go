package feed

import "gorm.io/gorm"

// Repository is the trivial paginated feed store. It is deliberately dumb:
// list newest-first, insert, nothing else.
type Repository interface {
	ListReports(limit, offset int) ([]Report, error)
	CreateReport(userID uint, message string) (*Report, error)
	ListNotes(limit, offset int) ([]Note, error)
	CreateNote(userID uint, note string) (*Note, error)
	ListDocuments(limit, offset int) ([]Document, error)
	CreateDocument(detail string) (*Document, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListReports(limit, offset int) ([]Report, error) {
	var reports []Report
	err := r.db.Model(&Report{}).
		Select("reports.*, users.name AS user_name").
		Joins("LEFT JOIN users ON users.id = reports.user_id").
		Order("reports.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *repository) CreateReport(userID uint, message string) (*Report, error) {
	report := &Report{UserID: userID, Message: message}
	if err := r.db.Create(report).Error; err != nil {
		return nil, err
	}

	var name string
	r.db.Table("users").Select("name").Where("id = ?", userID).Scan(&name)
	report.UserName = name
	return report, nil
}

func (r *repository) ListNotes(limit, offset int) ([]Note, error) {
	var notes []Note
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *repository) CreateNote(userID uint, note string) (*Note, error) {
	n := &Note{UserID: userID, Note: note}
	if err := r.db.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

func (r *repository) ListDocuments(limit, offset int) ([]Document, error) {
	var documents []Document
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *repository) CreateDocument(detail string) (*Document, error) {
	document := &Document{Detail: detail}
	if err := r.db.Create(document).Error; err != nil {
		return nil, err
	}
	return document, nil
}
