package main

import (
	"errors"
	"net/http"

	"mrs/src/db"
	"mrs/src/models"
	"mrs/src/types"
	"mrs/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func movieHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/movies", func(ctx *gin.Context) {
			db := db.GetDb()
			query := db.Model(&models.Movie{})
			if genre := ctx.Query("genre"); genre != "" {
				query = query.Where(&models.Movie{Genre: genre})
			}
			var data []models.Movie
			if err := query.Order("title").Find(&data).Error; err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/movies/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var movie models.Movie
			err := db.
				Where(&models.Movie{ID: params.ID}).
				Preload("Showtimes").
				Preload("Showtimes.Auditorium").
				First(&movie).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": movie})
		}).
		POST("/movies", func(ctx *gin.Context) {
			var body types.CreateMovieRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			movie, err := utils.CreateMovie(&body)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": movie})
		}).
		PATCH("/movies/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateMovieRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var movie models.Movie
			if err := db.Where(&models.Movie{ID: params.ID}).First(&movie).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
				return
			}
			updates := map[string]any{}
			if body.Title != nil {
				updates["title"] = *body.Title
				updates["slug"] = slug.Make(*body.Title)
			}
			if body.Description != nil {
				updates["description"] = *body.Description
			}
			if body.Genre != nil {
				updates["genre"] = *body.Genre
			}
			if body.DurationMins != nil {
				updates["duration_mins"] = *body.DurationMins
			}
			err := db.
				Model(&models.Movie{}).
				Where(&models.Movie{ID: movie.ID}).
				Updates(updates).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title is already in use"})
					return
				}
				abortWithError(ctx, err)
				return
			}
			if err := db.Where(&models.Movie{ID: movie.ID}).First(&movie).Error; err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": movie})
		}).
		DELETE("/movies/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var count int64
			err := db.
				Model(&models.Showtime{}).
				Where(&models.Showtime{MovieID: params.ID}).
				Where("end_time > now()").
				Count(&count).
				Error
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			if count > 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "movie still has upcoming showtimes"})
				return
			}
			if err := db.Delete(&models.Movie{}, params.ID).Error; err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
