package broker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skybi/session-broker/internal/api/broker/session"
	"github.com/skybi/session-broker/internal/api/schema"
	"github.com/skybi/session-broker/internal/conference"
	"github.com/skybi/session-broker/internal/metrics"
)

var (
	messageSessionNotFound = "Problems in the app server: the SESSION does not exist"
	messageTokenNotFound   = "Problems in the app server: the TOKEN wasn't valid"

	errSessionNameEmpty = &schema.Error{
		Type:    "validation.requestBody.parameter.empty",
		Message: "The request body parameter 'sessionName' must not be empty.",
		Details: map[string]any{
			"parameter": "sessionName",
		},
	}
)

type endpointGetTokenRequestPayload struct {
	SessionName *string `json:"sessionName" required:"true"`
}

type connectionData struct {
	ServerData string `json:"serverData"`
}

// EndpointGetToken handles the 'POST /api-sessions/get-token' endpoint
func (service *Service) EndpointGetToken(writer http.ResponseWriter, request *http.Request) {
	ses := request.Context().Value(contextValueSession).(*session.Session)

	payload, validationErrs, err := schema.UnmarshalBody[endpointGetTokenRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) == 0 && *payload.SessionName == "" {
		validationErrs = append(validationErrs, errSessionNameEmpty)
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}
	name := *payload.SessionName

	// Resolve the role of the logged-in user
	obj, err := service.Storage.Users().GetByUsername(request.Context(), ses.Username)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		if err := service.destroySession(writer, request); err != nil {
			service.writer.WriteInternalError(writer, err)
			return
		}
		service.writer.WriteText(writer, http.StatusUnauthorized, messageNotLogged)
		return
	}

	data, err := json.Marshal(connectionData{ServerData: obj.Username})
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	properties := &conference.ConnectionProperties{
		Data: string(data),
		Role: obj.Role,
	}

	ctx := request.Context()
	if service.Config.PlatformTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, service.Config.PlatformTimeout)
		defer cancel()
	}

	start := time.Now()
	issued, err := service.registry.IssueToken(ctx, name, properties)
	metrics.PlatformCallDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		switch {
		case errors.Is(err, conference.ErrUpstream):
			metrics.UpstreamFailures.Inc()
			log.Error().Err(err).Str("session", name).Str("user", obj.Username).Msg("could not issue a conference token")
			service.writer.WriteErrors(writer, http.StatusBadGateway, schema.ErrUpstream)
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			log.Warn().Err(err).Str("session", name).Str("user", obj.Username).Msg("gave up waiting for the conference session")
			service.writer.WriteErrors(writer, http.StatusGatewayTimeout, schema.ErrUpstreamTimeout)
		default:
			service.writer.WriteInternalError(writer, err)
		}
		return
	}

	metrics.RecordTokenIssued(string(obj.Role), issued.Created)
	event := log.Info().
		Str("session", name).
		Str("remote_session", issued.SessionID).
		Str("connection", issued.ConnectionID).
		Str("user", obj.Username).
		Str("role", string(obj.Role))
	if issued.Created {
		event.Msg("created conference session and issued its first token")
	} else {
		event.Msg("issued conference token")
	}

	service.writer.WriteJSON(writer, map[string]string{"0": issued.Token})
}

type endpointRemoveUserRequestPayload struct {
	SessionName *string `json:"sessionName" required:"true"`
	Token       *string `json:"token" required:"true"`
}

// EndpointRemoveUser handles the 'POST /api-sessions/remove-user' endpoint
func (service *Service) EndpointRemoveUser(writer http.ResponseWriter, request *http.Request) {
	ses := request.Context().Value(contextValueSession).(*session.Session)

	payload, validationErrs, err := schema.UnmarshalBody[endpointRemoveUserRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}
	name := *payload.SessionName

	deleted, err := service.registry.RemoveToken(name, *payload.Token)
	switch {
	case errors.Is(err, conference.ErrSessionNotFound):
		service.writer.WriteText(writer, http.StatusInternalServerError, messageSessionNotFound)
		return
	case errors.Is(err, conference.ErrTokenNotFound):
		service.writer.WriteText(writer, http.StatusInternalServerError, messageTokenNotFound)
		return
	case err != nil:
		service.writer.WriteInternalError(writer, err)
		return
	}

	metrics.RecordTokenRemoved(deleted)
	event := log.Info().Str("session", name).Str("user", ses.Username)
	if deleted {
		event.Msg("removed the last conference token and discarded the session")
	} else {
		event.Msg("removed conference token")
	}

	service.writer.WriteEmpty(writer, http.StatusOK)
}
