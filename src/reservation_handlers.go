package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path"

	"mrs/src/common"
	"mrs/src/db"
	"mrs/src/models"
	"mrs/src/types"
	"mrs/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
)

func reservationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/reservations", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			data, err := utils.GetOwnReservations(userId)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/reservations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var reservation models.Reservation
			err := db.
				Where(&models.Reservation{ID: params.ID, UserID: userId}).
				Preload("Showtime").
				Preload("Showtime.Movie").
				Preload("Showtime.Auditorium").
				Preload("ReservedSeats").
				Preload("ReservedSeats.Seat").
				First(&reservation).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		}).
		POST("/reservations", func(ctx *gin.Context) {
			var body types.CreateReservationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			reservation, payment, err := common.CreateReservation(ctx.Request.Context(), userId, &body)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": reservation, "payment": payment})
		}).
		PATCH("/reservations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateReservationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			reservation, payment, err := common.UpdateReservation(ctx.Request.Context(), userId, params.ID, &body)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			if payment != nil {
				ctx.JSON(http.StatusOK, gin.H{"data": reservation, "payment": payment})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		}).
		PUT("/reservations/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if _, err := common.CancelReservation(ctx.Request.Context(), userId, params.ID); err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/reservations/:id/qr", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var reservation models.Reservation
			err := db.
				Where(&models.Reservation{ID: params.ID, UserID: userId}).
				First(&reservation).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				return
			}
			if reservation.Status == types.RESERVATION_CANCELED {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "reservation is cancelled"})
				return
			}
			qrc, err := qrcode.New(reservation.Code)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			filepath := path.Join(os.TempDir(), fmt.Sprintf("%s.jpeg", reservation.Code))
			if err := qrc.Save(filepath); err != nil {
				log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.FileAttachment(filepath, "reservation.jpeg")
		})
	return g
}
