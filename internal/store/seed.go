// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nd-labs/eduspace/internal/auth"
	"github.com/nd-labs/eduspace/internal/model"
)

// Bootstrap admin credentials for first run. Change the passwords after
// the first login.
const (
	seedAdmin1Email    = "nhatdang10.nd@gmail.com"
	seedAdmin1Password = "cnd5110@.c"
	seedAdmin2Email    = "chaunhatdangne5110@gmail.com"
	seedAdmin2Password = "defaultpassword"
)

// Seed creates the bootstrap users and sample courses when no user
// collection has been persisted yet. Passwords are hashed at seed time;
// the store never holds plaintext credentials.
func Seed(ctx context.Context, kv *KV) error {
	_, _, found, err := kv.getRaw(ctx, KeyUsers)
	if err != nil {
		return fmt.Errorf("checking for existing users: %w", err)
	}
	if found {
		slog.Info("user collection already exists, skipping seed")
		return nil
	}

	now := time.Now()
	users := make([]model.User, 0, 2)

	for _, s := range []struct {
		id, email, password, name, mgmtPassword, avatar string
	}{
		{"admin-1", seedAdmin1Email, seedAdmin1Password, "Nhật Đăng (Admin)", "adminpassword123", "https://picsum.photos/seed/admin1/200"},
		{"admin-2", seedAdmin2Email, seedAdmin2Password, "Châu Nhật Đăng (Admin)", "adminpassword456", "https://picsum.photos/seed/admin2/200"},
	} {
		passwordHash, err := auth.HashPassword(s.password)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		mgmtHash, err := auth.HashPassword(s.mgmtPassword)
		if err != nil {
			return fmt.Errorf("hashing management password: %w", err)
		}
		users = append(users, model.User{
			ID:                     s.id,
			Email:                  s.email,
			PasswordHash:           passwordHash,
			FullName:               s.name,
			Role:                   model.RoleAdmin,
			Avatar:                 s.avatar,
			ManagementPasswordHash: mgmtHash,
			CreatedAt:              now,
			UpdatedAt:              now,
		})
	}

	if _, err := Save(ctx, kv, KeyUsers, users, 0); err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}

	courses := []model.Course{
		{
			ID:          "c1",
			Title:       "Lập trình React cơ bản",
			Description: "Khóa học dành cho người mới bắt đầu với React và Tailwind CSS.",
			Thumbnail:   "https://picsum.photos/seed/react/800/450",
			IsVIP:       false,
			AuthorID:    "admin-1",
			Status:      model.CourseStatusPublished,
			Lessons: []model.Lesson{
				{ID: "l1", Title: "Giới thiệu về React", VideoURL: "https://www.youtube.com/embed/dQw4w9WgXcQ", Content: "Nội dung bài học đầu tiên về React."},
			},
			Quizzes: []model.Quiz{},
		},
		{
			ID:          "c2",
			Title:       "NodeJS Nâng Cao (VIP)",
			Description: "Học cách xây dựng server-side mạnh mẽ với NodeJS và Express.",
			Thumbnail:   "https://picsum.photos/seed/node/800/450",
			IsVIP:       true,
			AuthorID:    "admin-2",
			Status:      model.CourseStatusPublished,
			Lessons: []model.Lesson{
				{ID: "l2", Title: "Cấu trúc thư mục chuyên nghiệp", VideoURL: "https://www.youtube.com/embed/dQw4w9WgXcQ", Content: "Học cách tổ chức code Nodejs."},
			},
			Quizzes: []model.Quiz{},
		},
	}

	if _, err := Save(ctx, kv, KeyCourses, courses, 0); err != nil {
		return fmt.Errorf("seeding courses: %w", err)
	}

	slog.Info("seeded bootstrap data",
		"users", len(users),
		"courses", len(courses),
		"admin_email", seedAdmin1Email,
		"admin_password", seedAdmin1Password,
	)

	return nil
}
