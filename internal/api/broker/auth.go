package broker

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skybi/session-broker/internal/api/broker/session"
	"github.com/skybi/session-broker/internal/api/schema"
	"github.com/skybi/session-broker/internal/metrics"
)

type contextKey string

var (
	contextValueSession = contextKey("session")

	cookieNameToken = "session_token"

	messageLoginFailed = "User/Pass incorrect"
	messageNotLogged   = "User not logged"
)

type endpointLoginRequestPayload struct {
	User *string `json:"user" required:"true"`
	Pass *string `json:"pass" required:"true"`
}

// EndpointLogin handles the 'POST /api-login/login' endpoint
func (service *Service) EndpointLogin(writer http.ResponseWriter, request *http.Request) {
	address := remoteAddress(request)
	if service.loginThrottle.blocked(address) {
		metrics.RecordLogin("throttled")
		service.writer.WriteErrors(writer, http.StatusTooManyRequests, schema.ErrTooManyRequests)
		return
	}

	payload, validationErrs, err := schema.UnmarshalBody[endpointLoginRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		// A rejected login attempt always ends the presented session
		if err := service.destroySession(writer, request); err != nil {
			service.writer.WriteInternalError(writer, err)
			return
		}
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	obj, err := service.Storage.Users().Authenticate(request.Context(), *payload.User, *payload.Pass)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	// A session presented by the client is never carried over
	if err := service.terminateSession(request); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	if obj == nil {
		unsetSessionCookie(writer, request)
		service.loginThrottle.fail(address)
		metrics.RecordLogin("failure")
		log.Debug().Str("user", *payload.User).Str("address", address).Msg("rejected login attempt")
		service.writer.WriteText(writer, http.StatusUnauthorized, messageLoginFailed)
		return
	}
	service.loginThrottle.reset(address)

	expires := time.Now().Add(service.Config.SessionLifetime)
	rawToken, err := service.sessionStorage.Create(request.Context(), obj.Username, expires.Unix())
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	http.SetCookie(writer, &http.Cookie{
		Name:     cookieNameToken,
		Value:    rawToken,
		Path:     "/",
		Expires:  expires,
		Secure:   service.Config.IsEnvProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	metrics.RecordLogin("success")
	log.Info().Str("user", obj.Username).Str("role", string(obj.Role)).Msg("user logged in")
	service.writer.WriteEmpty(writer, http.StatusOK)
}

// EndpointLogout handles the 'POST /api-login/logout' endpoint
func (service *Service) EndpointLogout(writer http.ResponseWriter, request *http.Request) {
	if ses := service.lookupSession(request); ses != nil {
		log.Info().Str("user", ses.Username).Msg("user logged out")
	}
	if err := service.destroySession(writer, request); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteEmpty(writer, http.StatusOK)
}

// MiddlewareVerifySession makes sure that the requesting client is logged in.
// Additionally, it injects the session object itself into the request context.
// Clients that are not logged in get their session destroyed.
func (service *Service) MiddlewareVerifySession(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var ses *session.Session
		if cookie, err := request.Cookie(cookieNameToken); err == nil {
			ses, err = service.sessionStorage.GetByRawToken(request.Context(), cookie.Value)
			if err != nil {
				service.writer.WriteInternalError(writer, err)
				return
			}
		}

		if ses == nil || ses.Username == "" {
			if err := service.destroySession(writer, request); err != nil {
				service.writer.WriteInternalError(writer, err)
				return
			}
			service.writer.WriteText(writer, http.StatusUnauthorized, messageNotLogged)
			return
		}

		// Delegate to the next handler
		request = request.WithContext(context.WithValue(request.Context(), contextValueSession, ses))
		next(writer, request)
	}
}

// lookupSession returns the live session presented by the client, if any
func (service *Service) lookupSession(request *http.Request) *session.Session {
	cookie, err := request.Cookie(cookieNameToken)
	if err != nil {
		return nil
	}
	ses, err := service.sessionStorage.GetByRawToken(request.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return ses
}

// destroySession terminates the session presented by the client and instructs the client to drop its cookie
func (service *Service) destroySession(writer http.ResponseWriter, request *http.Request) error {
	if err := service.terminateSession(request); err != nil {
		return err
	}
	unsetSessionCookie(writer, request)
	return nil
}

// terminateSession terminates the session presented by the client, if any
func (service *Service) terminateSession(request *http.Request) error {
	cookie, err := request.Cookie(cookieNameToken)
	if err != nil {
		return nil
	}
	return service.sessionStorage.Terminate(request.Context(), cookie.Value)
}

func unsetSessionCookie(writer http.ResponseWriter, request *http.Request) {
	if _, err := request.Cookie(cookieNameToken); err != nil {
		return
	}
	http.SetCookie(writer, &http.Cookie{
		Name:     cookieNameToken,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func remoteAddress(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
