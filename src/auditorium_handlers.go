package main

import (
	"net/http"

	"mrs/src/db"
	"mrs/src/models"
	"mrs/src/types"

	"github.com/gin-gonic/gin"
)

func auditoriumHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/auditoriums", func(ctx *gin.Context) {
			db := db.GetDb()
			var data []models.Auditorium
			if err := db.Order("name").Find(&data).Error; err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/auditoriums/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var auditorium models.Auditorium
			err := db.
				Where(&models.Auditorium{ID: params.ID}).
				Preload("Seats").
				First(&auditorium).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "auditorium not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": auditorium})
		}).
		POST("/auditoriums", func(ctx *gin.Context) {
			var body types.CreateAuditoriumRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			auditorium := models.Auditorium{
				Name:     body.Name,
				Capacity: body.Capacity,
			}
			db := db.GetDb()
			if err := db.Create(&auditorium).Error; err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": auditorium})
		}).
		PATCH("/auditoriums/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateAuditoriumRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var auditorium models.Auditorium
			if err := db.Where(&models.Auditorium{ID: params.ID}).First(&auditorium).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "auditorium not found"})
				return
			}
			if body.Capacity != nil {
				var seatCount int64
				err := db.
					Model(&models.Seat{}).
					Where(&models.Seat{AuditoriumID: auditorium.ID}).
					Count(&seatCount).
					Error
				if err != nil {
					abortWithError(ctx, err)
					return
				}
				if int64(*body.Capacity) < seatCount {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "capacity cannot be lower than the number of seats"})
					return
				}
			}
			updates := map[string]any{}
			if body.Name != nil {
				updates["name"] = *body.Name
			}
			if body.Capacity != nil {
				updates["capacity"] = *body.Capacity
			}
			err := db.
				Model(&models.Auditorium{}).
				Where(&models.Auditorium{ID: auditorium.ID}).
				Updates(updates).
				Error
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			if err := db.Where(&models.Auditorium{ID: auditorium.ID}).First(&auditorium).Error; err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": auditorium})
		}).
		DELETE("/auditoriums/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var count int64
			err := db.
				Model(&models.Showtime{}).
				Where(&models.Showtime{AuditoriumID: params.ID}).
				Where("end_time > now()").
				Count(&count).
				Error
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			if count > 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "auditorium still has upcoming showtimes"})
				return
			}
			if err := db.Delete(&models.Auditorium{}, params.ID).Error; err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
