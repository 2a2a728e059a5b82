package main

import (
	"errors"
	"net/http"

	"mrs/src/db"
	"mrs/src/lib"
	"mrs/src/models"
	"mrs/src/types"
	"mrs/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errActiveReservations = errors.New("showtime still has confirmed reservations")

func showtimeHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/showtimes", func(ctx *gin.Context) {
			db := db.GetDb()
			query := db.Model(&models.Showtime{})
			if movie := ctx.Query("movie"); movie != "" {
				query = query.Where("movie_id = ?", movie)
			}
			if upcoming := ctx.Query("upcoming"); upcoming == "true" {
				query = query.Where("start_time > now()")
			}
			var data []models.Showtime
			err := query.
				Preload("Movie").
				Preload("Auditorium").
				Order("start_time").
				Find(&data).
				Error
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/showtimes/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var showtime models.Showtime
			err := db.
				Where(&models.Showtime{ID: params.ID}).
				Preload("Movie").
				Preload("Auditorium").
				First(&showtime).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "showtime not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": showtime})
		}).
		GET("/showtimes/:id/seats", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			seatMap, err := utils.GetSeatAvailability(params.ID)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			available := 0
			for _, seat := range seatMap {
				if !seat.Reserved {
					available++
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": seatMap, "available": available})
		}).
		POST("/showtimes", func(ctx *gin.Context) {
			var body types.CreateShowtimeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			showtime, err := utils.CreateShowtime(&body)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": showtime})
		}).
		PATCH("/showtimes/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateShowtimeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			showtime, err := utils.UpdateShowtime(params.ID, &body)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			lib.DropSeatMap(showtime.ID)
			ctx.JSON(http.StatusOK, gin.H{"data": showtime})
		}).
		DELETE("/showtimes/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var count int64
				err := tx.
					Model(&models.Reservation{}).
					Where(&models.Reservation{ShowtimeID: params.ID, Status: types.RESERVATION_CONFIRMED}).
					Count(&count).
					Error
				if err != nil {
					return err
				}
				if count > 0 {
					return errActiveReservations
				}
				return tx.Delete(&models.Showtime{}, params.ID).Error
			})
			if err != nil {
				if err == errActiveReservations {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				abortWithError(ctx, err)
				return
			}
			lib.DropSeatMap(params.ID)
			ctx.Status(http.StatusNoContent)
		})
	return g
}
