package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := func(usr user.User) bool {
		for _, ex := range excludedUsers {
			if ex.ID == usr.ID {
				return true
			}
		}
		return false
	}
	for _, usr := range repo.db.users {
		if excluded(*usr) {
			continue
		}
		if username != "" && strings.EqualFold(usr.Username, username) {
			return user.ErrUsernameExists
		}
		if email != "" && strings.EqualFold(usr.Email, email) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = newID()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(_ context.Context, uname string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if strings.EqualFold(usr.Username, uname) || strings.EqualFold(usr.Email, uname) {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FilterUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	match := func(usr user.User) bool {
		if filter == nil || filter.IsEmpty() {
			return true
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(usr.Name), s) &&
				!strings.Contains(strings.ToLower(usr.Username), s) &&
				!strings.Contains(strings.ToLower(usr.Email), s) {
				return false
			}
		}
		if len(filter.Roles) > 0 {
			var any bool
			for _, role := range filter.Roles {
				for _, ur := range usr.Roles {
					if role == ur {
						any = true
					}
				}
			}
			if !any {
				return false
			}
		}
		if filter.IsActive != nil {
			if usr.IsActive == nil || *usr.IsActive != *filter.IsActive {
				return false
			}
		}
		if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
			return false
		}
		if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
			return false
		}
		return true
	}

	var users []user.User
	for _, usr := range repo.db.users {
		if match(*usr) {
			users = append(users, *usr)
		}
	}
	sortUsers(users, ordering)
	return users, nil
}

func sortUsers(users []user.User, ordering []core.DBOrdering) {
	sort.Slice(users, func(i, j int) bool {
		for _, ord := range ordering {
			var less, eq bool
			switch ord.Field {
			case "username":
				less, eq = users[i].Username < users[j].Username, users[i].Username == users[j].Username
			case "email":
				less, eq = users[i].Email < users[j].Email, users[i].Email == users[j].Email
			default:
				less, eq = users[i].CreatedAt.Before(users[j].CreatedAt), users[i].CreatedAt.Equal(users[j].CreatedAt)
			}
			if eq {
				continue
			}
			if ord.Ascending {
				return less
			}
			return !less
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.users, id)
	}
	return nil
}

func (repo *userRepository) CreateBlock(_ context.Context, blk user.Block) (user.Block, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := blk.BlockerID + "/" + blk.BlockedID
	if existing, ok := repo.db.blocks[key]; ok {
		return *existing, nil
	}
	blk.ID = newID()
	repo.db.blocks[key] = &blk
	return blk, nil
}

func (repo *userRepository) DeleteBlock(_ context.Context, blockerID, blockedID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.blocks, blockerID+"/"+blockedID)
	return nil
}

func (repo *userRepository) GetBlocks(_ context.Context, blockerID string) ([]user.Block, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var blocks []user.Block
	for _, blk := range repo.db.blocks {
		if blk.BlockerID == blockerID {
			blocks = append(blocks, *blk)
		}
	}
	return blocks, nil
}

func (repo *userRepository) PairBlocked(_ context.Context, userID, otherID string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, a := repo.db.blocks[userID+"/"+otherID]
	_, b := repo.db.blocks[otherID+"/"+userID]
	return a || b, nil
}
