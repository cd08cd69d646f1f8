package store

import (
	"errors"

	"gorm.io/gorm"

	"inkwell/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email is already registered")
	ErrDuplicateTitle = errors.New("post title is already taken")
)

// Store is the query layer shared by every module. Handlers never touch
// gorm directly; relationships are plain foreign keys resolved through
// these methods.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts a new user. The very first account becomes the admin;
// everyone after that is a regular member. Duplicate emails are detected by
// the unique constraint, not a prior lookup, so the check and the insert
// stay atomic.
func (s *Store) CreateUser(user *models.User) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			user.Role = models.RoleAdmin
		} else {
			user.Role = models.RoleMember
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateEmail
			}
			return err
		}
		return nil
	})
}

func (s *Store) UserByID(id int) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) UserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Posts returns every post in stable id order.
func (s *Store) Posts() ([]models.Post, error) {
	var posts []models.Post
	if err := s.db.Order("id ASC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) PostByID(id int) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *Store) PostsByAuthor(authorID int) ([]models.Post, error) {
	var posts []models.Post
	if err := s.db.Where("author_id = ?", authorID).Order("id ASC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) CreatePost(post *models.Post) error {
	if err := s.db.Create(post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTitle
		}
		return err
	}
	return nil
}

// UpdatePost overwrites the editable fields only. Date and author are never
// touched after creation.
func (s *Store) UpdatePost(id int, title, subtitle, body, imgURL string) error {
	result := s.db.Model(&models.Post{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":    title,
		"subtitle": subtitle,
		"body":     body,
		"img_url":  imgURL,
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTitle
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post and its comments in one transaction so no
// orphaned comment rows are left behind.
func (s *Store) DeletePost(id int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error
	})
}

func (s *Store) CreateComment(comment *models.Comment) error {
	return s.db.Create(comment).Error
}

func (s *Store) CommentsByPost(postID int) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.db.Where("post_id = ?", postID).Order("id ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *Store) CountUsers() (int64, error) {
	var count int64
	err := s.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

func (s *Store) CountPosts() (int64, error) {
	var count int64
	err := s.db.Model(&models.Post{}).Count(&count).Error
	return count, err
}

func (s *Store) CountComments() (int64, error) {
	var count int64
	err := s.db.Model(&models.Comment{}).Count(&count).Error
	return count, err
}
