package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/badminton-doubles/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlayer(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := NewPlayerService(repo, nil, nil)

	player, err := svc.CreatePlayer(context.Background(), CreatePlayerInput{Name: "  Lin Dan "})
	require.NoError(t, err)
	assert.Equal(t, 1, player.ID)
	assert.Equal(t, "Lin Dan", player.Name)
	assert.Equal(t, defaultSkillLevel, player.SkillLevel)

	tests := []struct {
		name    string
		input   CreatePlayerInput
		wantErr error
	}{
		{name: "blank name", input: CreatePlayerInput{Name: " "}, wantErr: ErrPlayerNameRequired},
		{name: "skill too low", input: CreatePlayerInput{Name: "A", SkillLevel: intPtr(0)}, wantErr: ErrPlayerInvalidSkill},
		{name: "skill too high", input: CreatePlayerInput{Name: "A", SkillLevel: intPtr(11)}, wantErr: ErrPlayerInvalidSkill},
		{name: "duplicate name", input: CreatePlayerInput{Name: "Lin Dan", SkillLevel: intPtr(9)}, wantErr: ErrPlayerNameConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePlayer(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdatePlayer(t *testing.T) {
	repo := newFakePlayerRepo(seedPlayers(2)...)
	svc := NewPlayerService(repo, nil, nil)

	updated, err := svc.UpdatePlayer(context.Background(), 1, UpdatePlayerInput{SkillLevel: intPtr(8)})
	require.NoError(t, err)
	assert.Equal(t, "Player 01", updated.Name)
	assert.Equal(t, 8, updated.SkillLevel)

	_, err = svc.UpdatePlayer(context.Background(), 1, UpdatePlayerInput{Name: strPtr("Player 02")})
	require.ErrorIs(t, err, ErrPlayerNameConflict)

	_, err = svc.UpdatePlayer(context.Background(), 1, UpdatePlayerInput{Name: strPtr("")})
	require.ErrorIs(t, err, ErrPlayerNameRequired)

	_, err = svc.UpdatePlayer(context.Background(), 42, UpdatePlayerInput{SkillLevel: intPtr(3)})
	require.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestDeletePlayer(t *testing.T) {
	repo := newFakePlayerRepo(seedPlayers(2)...)
	repo.inUse[2] = true
	uploader := newFakeUploader()
	key := "players/1/avatar_1.png"
	require.NoError(t, repo.UpdateAvatarKey(context.Background(), 1, &key))
	svc := NewPlayerService(repo, uploader, nil)

	require.NoError(t, svc.DeletePlayer(context.Background(), 1))
	assert.Equal(t, []string{key}, uploader.deleted)

	require.ErrorIs(t, svc.DeletePlayer(context.Background(), 1), ErrPlayerNotFound)
	require.ErrorIs(t, svc.DeletePlayer(context.Background(), 2), ErrPlayerInUse)
}

func TestListPlayersAddsAvatarURLs(t *testing.T) {
	repo := newFakePlayerRepo(seedPlayers(2)...)
	key := "players/2/avatar_5.webp"
	require.NoError(t, repo.UpdateAvatarKey(context.Background(), 2, &key))
	svc := NewPlayerService(repo, newFakeUploader(), nil)

	players, err := svc.ListPlayers(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Nil(t, players[0].AvatarURL)
	require.NotNil(t, players[1].AvatarURL)
	assert.Equal(t, "https://cdn.test/"+key, *players[1].AvatarURL)
}

func TestUploadAvatar(t *testing.T) {
	repo := newFakePlayerRepo(seedPlayers(1)...)
	uploader := newFakeUploader()
	svc := NewPlayerService(repo, uploader, nil).(*playerService)
	svc.now = func() time.Time { return time.Unix(0, 1000) }

	player, err := svc.UploadAvatar(context.Background(), 1, strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	require.NotNil(t, player.AvatarKey)
	assert.Equal(t, "players/1/avatar_1000.png", *player.AvatarKey)
	require.NotNil(t, player.AvatarURL)
	assert.Equal(t, "https://cdn.test/players/1/avatar_1000.png", *player.AvatarURL)
	assert.Equal(t, []byte("png-bytes"), uploader.objects["players/1/avatar_1000.png"])

	svc.now = func() time.Time { return time.Unix(0, 2000) }
	_, err = svc.UploadAvatar(context.Background(), 1, strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, []string{"players/1/avatar_1000.png"}, uploader.deleted)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "players/1/avatar_2000.jpg", *stored.AvatarKey)
}

func TestUploadAvatarErrors(t *testing.T) {
	repo := newFakePlayerRepo(seedPlayers(1)...)

	disabled := NewPlayerService(repo, nil, nil)
	_, err := disabled.UploadAvatar(context.Background(), 1, strings.NewReader("x"), "image/png")
	require.ErrorIs(t, err, ErrUploadsDisabled)

	svc := NewPlayerService(repo, newFakeUploader(), nil)
	_, err = svc.UploadAvatar(context.Background(), 1, strings.NewReader("x"), "application/pdf")
	require.ErrorIs(t, err, ErrInvalidAvatarFormat)

	_, err = svc.UploadAvatar(context.Background(), 7, strings.NewReader("x"), "image/png")
	require.ErrorIs(t, err, ErrPlayerNotFound)

	failing := newFakeUploader()
	failing.uploadErr = errFakeBackend
	_, err = NewPlayerService(repo, failing, nil).UploadAvatar(context.Background(), 1, strings.NewReader("x"), "image/png")
	require.ErrorIs(t, err, errFakeBackend)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, stored.AvatarKey)
	assert.Equal(t, models.Player{ID: 1, Name: "Player 01", SkillLevel: 1}, *stored)
}
