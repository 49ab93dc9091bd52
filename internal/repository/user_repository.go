package repository

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/iliyamo/food-court-orders/internal/model"
)

// UserRepo resolves (role, username) pairs against the flat credential
// tables under <dir>/<role>/users.csv. The tables are provisioned out of
// band and never written by this service; every lookup re-reads the file so
// an operator can rotate credentials without a restart.
type UserRepo struct {
	dir string
}

// NewUserRepo returns a repo rooted at the users directory.
func NewUserRepo(dir string) *UserRepo { return &UserRepo{dir: dir} }

// Find returns the credential row whose username matches exactly, or
// ErrUserNotFound. Rows are `username,bcryptHash,storeName`; the third
// column is optional and empty for clients.
func (r *UserRepo) Find(role, username string) (model.User, error) {
	f, err := os.Open(filepath.Join(r.dir, role, "users.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1 // client rows have two columns, seller rows three
	rd.TrimLeadingSpace = true
	rows, err := rd.ReadAll()
	if err != nil {
		return model.User{}, err
	}
	for _, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) != username {
			continue
		}
		u := model.User{Username: username}
		if len(row) > 1 {
			u.PasswordHash = strings.TrimSpace(row[1])
		}
		if len(row) > 2 {
			u.StoreName = strings.TrimSpace(row[2])
		}
		return u, nil
	}
	return model.User{}, ErrUserNotFound
}
