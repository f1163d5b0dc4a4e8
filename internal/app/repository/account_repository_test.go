package repository

import (
	"testing"
	"time"

	"github.com/devoriginal/account-backend/internal/app/model"
	"github.com/devoriginal/account-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAccountTest(t *testing.T) (*gorm.DB, AccountRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, NewAccountRepository(testDB)
}

func newTestAccount(email, name string) *model.Account {
	return &model.Account{
		Email:        email,
		PasswordHash: "hashedpassword",
		Profile:      model.Profile{Name: name},
	}
}

func TestAccountRepository_Create(t *testing.T) {
	_, repo := setupAccountTest(t)

	tests := []struct {
		name    string
		account *model.Account
		wantErr error
	}{
		{
			name:    "Valid account",
			account: newTestAccount("test@example.com", "Test User"),
		},
		{
			name:    "Duplicate email",
			account: newTestAccount("test@example.com", "Another User"),
			wantErr: gorm.ErrDuplicatedKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.account)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotZero(t, tt.account.ID)
				assert.NotZero(t, tt.account.Profile.ID)
				assert.Equal(t, tt.account.ID, tt.account.Profile.AccountID)
			}
		})
	}
}

func TestAccountRepository_FindByID(t *testing.T) {
	_, repo := setupAccountTest(t)

	account := newTestAccount("test@example.com", "Test User")
	require.NoError(t, repo.Create(account))

	found, err := repo.FindByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", found.Email)
	assert.Equal(t, "Test User", found.Profile.Name)

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAccountRepository_FindByEmail(t *testing.T) {
	_, repo := setupAccountTest(t)

	account := newTestAccount("test@example.com", "Test User")
	require.NoError(t, repo.Create(account))

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "Existing email", email: "test@example.com"},
		{name: "Non-existing email", email: "notfound@example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByEmail(tt.email)

			if tt.wantErr {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				assert.Nil(t, found)
			} else {
				require.NoError(t, err)
				assert.Equal(t, account.ID, found.ID)
				assert.Equal(t, "Test User", found.Profile.Name)
			}
		})
	}
}

func TestAccountRepository_ExistsByEmail(t *testing.T) {
	_, repo := setupAccountTest(t)
	require.NoError(t, repo.Create(newTestAccount("test@example.com", "Test User")))

	exists, err := repo.ExistsByEmail("test@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail("other@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAccountRepository_PartialUpdates(t *testing.T) {
	_, repo := setupAccountTest(t)

	phone := "5511999999999"
	account := newTestAccount("test@example.com", "Test User")
	account.Profile.Phone = &phone
	require.NoError(t, repo.Create(account))

	birth := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateProfileFields(account.ID, map[string]interface{}{
		"name":     "Renamed",
		"birth_at": birth,
	}))
	require.NoError(t, repo.UpdateFields(account.ID, map[string]interface{}{
		"email": "renamed@example.com",
	}))

	updated, err := repo.FindByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed@example.com", updated.Email)
	assert.Equal(t, "Renamed", updated.Profile.Name)
	require.NotNil(t, updated.Profile.Phone)
	assert.Equal(t, phone, *updated.Profile.Phone)
	require.NotNil(t, updated.Profile.BirthAt)
	assert.Equal(t, "1990-05-17", updated.Profile.BirthAt.Format("2006-01-02"))

	assert.NoError(t, repo.UpdateFields(account.ID, nil))
	assert.ErrorIs(t, repo.UpdateFields(9999, map[string]interface{}{"email": "x@example.com"}), gorm.ErrRecordNotFound)
}

func TestAccountRepository_UpdatePasswordHash(t *testing.T) {
	_, repo := setupAccountTest(t)
	account := newTestAccount("test@example.com", "Test User")
	require.NoError(t, repo.Create(account))

	require.NoError(t, repo.UpdatePasswordHash(account.ID, "new-hash"))

	updated, err := repo.FindByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", updated.PasswordHash)
}

func TestAccountRepository_UpdatePhoto(t *testing.T) {
	_, repo := setupAccountTest(t)
	account := newTestAccount("test@example.com", "Test User")
	require.NoError(t, repo.Create(account))

	photo := "photo-1.png"
	require.NoError(t, repo.UpdatePhoto(account.ID, &photo))

	updated, err := repo.FindByID(account.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Photo)
	assert.Equal(t, photo, *updated.Photo)

	require.NoError(t, repo.UpdatePhoto(account.ID, nil))

	cleared, err := repo.FindByID(account.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.Photo)
}

func TestAccountRepository_DeleteCascadesProfile(t *testing.T) {
	testDB, repo := setupAccountTest(t)
	account := newTestAccount("test@example.com", "Test User")
	require.NoError(t, repo.Create(account))

	require.NoError(t, repo.Delete(account.ID))

	_, err := repo.FindByID(account.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var profiles int64
	require.NoError(t, testDB.Model(&model.Profile{}).Where("account_id = ?", account.ID).Count(&profiles).Error)
	assert.Zero(t, profiles)

	assert.ErrorIs(t, repo.Delete(account.ID), gorm.ErrRecordNotFound)
}
