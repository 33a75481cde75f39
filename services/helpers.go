package services

import (
	"log/slog"

	"github.com/Dosada05/badminton-doubles/brackets"
	"github.com/Dosada05/badminton-doubles/models"
	"github.com/Dosada05/badminton-doubles/storage"
)

// Broadcaster pushes live updates to websocket rooms.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastToRoom(string, interface{}) {}

func broadcasterOrNoop(b Broadcaster) Broadcaster {
	if b == nil {
		return noopBroadcaster{}
	}
	return b
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

func publish(b Broadcaster, room, eventType string, payload interface{}) {
	b.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    eventType,
		Payload: payload,
		RoomID:  room,
	})
}

func populatePlayerAvatarURL(player *models.Player, uploader storage.FileUploader) {
	if player == nil || uploader == nil || player.AvatarKey == nil || *player.AvatarKey == "" {
		return
	}
	url := uploader.GetPublicURL(*player.AvatarKey)
	if url != "" {
		player.AvatarURL = &url
	}
}

func playerIDs(players []models.Player) []int {
	ids := make([]int, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}
