package livekit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/skybi/session-broker/internal/conference"
	"github.com/skybi/session-broker/internal/config"
	"github.com/skybi/session-broker/internal/user"
)

type roomCreator func(ctx context.Context, request *livekit.CreateRoomRequest) (*livekit.Room, error)

// Platform implements conference.Platform on top of a LiveKit server.
// Every conference session is backed by a LiveKit room; connections are LiveKit access tokens scoped to that room.
type Platform struct {
	createRoom   roomCreator
	apiKey       string
	apiSecret    string
	tokenTTL     time.Duration
	emptyTimeout time.Duration
}

var _ conference.Platform = (*Platform)(nil)

// New creates a new LiveKit platform using the given configuration
func New(cfg *config.Config) *Platform {
	client := lksdk.NewRoomServiceClient(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)
	return &Platform{
		createRoom: func(ctx context.Context, request *livekit.CreateRoomRequest) (*livekit.Room, error) {
			return client.CreateRoom(ctx, request)
		},
		apiKey:       cfg.LiveKitAPIKey,
		apiSecret:    cfg.LiveKitAPISecret,
		tokenTTL:     cfg.LiveKitTokenTTL,
		emptyTimeout: cfg.LiveKitRoomEmptyTimeout,
	}
}

// CreateSession creates a new LiveKit room
func (platform *Platform) CreateSession(ctx context.Context) (conference.Handle, error) {
	room, err := platform.createRoom(ctx, &livekit.CreateRoomRequest{
		Name:         "ses_" + uuid.NewString(),
		EmptyTimeout: uint32(platform.emptyTimeout.Seconds()),
	})
	if err != nil {
		return nil, err
	}
	return &Room{
		platform: platform,
		name:     room.Name,
	}, nil
}

// Room represents a LiveKit room backing a conference session
type Room struct {
	platform *Platform
	name     string
}

var _ conference.Handle = (*Room)(nil)

// ID returns the name of the LiveKit room
func (room *Room) ID() string {
	return room.name
}

// CreateConnection generates an access token allowing a new participant to join the room.
// The participant's permissions are derived from the role; the connection data is attached as participant metadata.
func (room *Room) CreateConnection(_ context.Context, properties *conference.ConnectionProperties) (*conference.Connection, error) {
	identity := "con_" + uuid.NewString()

	token := auth.NewAccessToken(room.platform.apiKey, room.platform.apiSecret)
	token.AddGrant(videoGrant(room.name, properties.Role.Grants())).
		SetIdentity(identity).
		SetMetadata(properties.Data).
		SetValidFor(room.platform.tokenTTL)

	jwt, err := token.ToJWT()
	if err != nil {
		return nil, err
	}
	return &conference.Connection{
		ID:    identity,
		Token: jwt,
	}, nil
}

func videoGrant(room string, grants user.Grants) *auth.VideoGrant {
	canSubscribe := grants.Has(user.GrantSubscribe)
	canPublish := grants.Has(user.GrantPublish)
	canPublishData := grants.Has(user.GrantPublishData)
	return &auth.VideoGrant{
		RoomJoin:       true,
		Room:           room,
		CanSubscribe:   &canSubscribe,
		CanPublish:     &canPublish,
		CanPublishData: &canPublishData,
	}
}
