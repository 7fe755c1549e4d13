package internal

import (
	"net/http"
	"repx/internal/controllers"
	"repx/internal/providers"
	"repx/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/ratings", http.HandlerFunc(apiController.SubmitRating))
	routers.Get("/ratings/given", http.HandlerFunc(apiController.GetGivenRatings))
	routers.Delete("/ratings/given", http.HandlerFunc(apiController.DeleteGivenRating))
	routers.Get("/ratings/received", http.HandlerFunc(apiController.GetReceivedRatings))
	routers.Delete("/ratings/received", http.HandlerFunc(apiController.DeleteReceivedRating))
	routers.Get("/summary", http.HandlerFunc(apiController.GetSummary))
	routers.Get("/search", http.HandlerFunc(apiController.SearchParticipants))
	routers.Get("/meta", http.HandlerFunc(apiController.GetMeta))
	return routers
}
