// Package docs Radio Santana API.
//
// Documentation of Radio Santana API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://radio-santana-api.herokuapp.com
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//     - bearer
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/radio-santana-api/api/handlers"
	"github.com/linesmerrill/radio-santana-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. alive is always true while the process
// answers, database reports the result of a store ping.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/v1/session session login
// Signs a listener in anonymously under a display name.
// responses:
//   201: loginResponse
//   400: errorResponse

// The bearer token of the new session and its state.
// swagger:response loginResponse
type loginResponseWrapper struct {
	// in:body
	Body models.LoginResponse
}

// swagger:parameters login
type loginParamsWrapper struct {
	// in:body
	Body models.LoginRequest
}

// swagger:route GET /api/v1/chat/messages chat chatMessages
// Lists the most recent chat messages, oldest first.
// responses:
//   200: chatMessagesResponse
//   503: errorResponse

// The current chat window.
// swagger:response chatMessagesResponse
type chatMessagesResponseWrapper struct {
	// in:body
	Body []models.ChatMessage
}

// swagger:route GET /api/v1/requests requests musicRequests
// Lists the retained music requests, newest first.
// responses:
//   200: musicRequestsResponse
//   503: errorResponse

// The retained music requests.
// swagger:response musicRequestsResponse
type musicRequestsResponseWrapper struct {
	// in:body
	Body []models.MusicRequest
}

// swagger:parameters createMusicRequest
type createMusicRequestParamsWrapper struct {
	// in:body
	Body models.CreateMusicRequest
}

// swagger:route POST /api/v1/requests requests createMusicRequest
// Submits a song request.
// responses:
//   201: description:created
//   400: errorResponse

// swagger:route GET /api/v1/shows shows showsList
// Lists the programming grid ordered by start time.
// responses:
//   200: showsResponse

// The programming grid.
// swagger:response showsResponse
type showsResponseWrapper struct {
	// in:body
	Body []models.Show
}

// swagger:route GET /api/v1/shows/current shows currentShow
// Gets the show on air right now.
// responses:
//   200: currentShowResponse

// The current weekday, time and show, if any.
// swagger:response currentShowResponse
type currentShowResponseWrapper struct {
	// in:body
	Body handlers.CurrentShowResponse
}

// swagger:route GET /api/v1/news news newsList
// Lists the latest news, newest first.
// responses:
//   200: newsResponse

// The latest news.
// swagger:response newsResponse
type newsResponseWrapper struct {
	// in:body
	Body []models.NewsItem
}

// swagger:route POST /api/v1/contact contact contactForm
// Sends the contact form to the station and a confirmation to the sender.
// responses:
//   200: description:sent
//   400: errorResponse
//   502: errorResponse

// swagger:parameters contactForm
type contactParamsWrapper struct {
	// in:body
	Body models.ContactMessage
}

// swagger:route GET /api/v1/stream/stats stream streamStats
// Gets the last polled listener statistics of the stream.
// responses:
//   200: streamStatsResponse
//   503: errorResponse

// The stream statistics.
// swagger:response streamStatsResponse
type streamStatsResponseWrapper struct {
	// in:body
	Body models.StreamStats
}

// Error details with a message that is safe to show.
// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
