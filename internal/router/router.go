package router

import (
	"studymate/internal/handlers"
	"studymate/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	studyHandler := handlers.NewStudyHandler()
	commentHandler := handlers.NewCommentHandler()
	enrollmentHandler := handlers.NewEnrollmentHandler()

	// Public Routes
	r.GET("/", studyHandler.Home)          // landing page, random picks
	r.GET("/study", studyHandler.List)     // listing index, ?page=&keyword=
	r.GET("/study/:id", studyHandler.Detail)

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)
	r.GET("/check-userid", authHandler.CheckLoginID) // live signup feedback

	// Protected Routes. Everything that mutates state is POST so a crawler
	// or prefetcher can't trip a delete or a like.
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/study/write", studyHandler.ShowCreate)
		authorized.POST("/study/write", studyHandler.Create)
		authorized.GET("/study/:id/edit", studyHandler.ShowEdit)
		authorized.POST("/study/:id/edit", studyHandler.Update)
		authorized.POST("/study/:id/delete", studyHandler.Delete)
		authorized.GET("/myposts", studyHandler.MyPosts)

		authorized.POST("/comment/write/:study_id", commentHandler.Create)
		authorized.POST("/comment/delete/:id", commentHandler.Delete)
		authorized.POST("/comment/like/:id", commentHandler.ToggleLike)

		authorized.POST("/study/:id/apply", enrollmentHandler.Apply)
		authorized.POST("/enrollment/:id/accept", enrollmentHandler.Accept)
		authorized.POST("/enrollment/:id/reject", enrollmentHandler.Reject)
	}
}
