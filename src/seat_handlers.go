package main

import (
	"errors"
	"fmt"
	"net/http"

	"mrs/src/db"
	"mrs/src/models"
	"mrs/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func seatHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/auditoriums/:id/seats", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var data []models.Seat
			err := db.
				Where(&models.Seat{AuditoriumID: params.ID}).
				Order("row, number").
				Find(&data).
				Error
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/seats/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var seat models.Seat
			err := db.
				Where(&models.Seat{ID: params.ID}).
				Preload("Auditorium").
				First(&seat).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "seat not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": seat})
		}).
		POST("/seats", func(ctx *gin.Context) {
			var body types.CreateSeatRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var seat models.Seat
			err := db.Transaction(func(tx *gorm.DB) error {
				var auditorium models.Auditorium
				if err := tx.Where(&models.Auditorium{ID: body.AuditoriumID}).First(&auditorium).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("auditorium with id %d not found", body.AuditoriumID)
					}
					return err
				}
				var seatCount int64
				err := tx.
					Model(&models.Seat{}).
					Where(&models.Seat{AuditoriumID: auditorium.ID}).
					Count(&seatCount).
					Error
				if err != nil {
					return err
				}
				if seatCount >= int64(auditorium.Capacity) {
					return fmt.Errorf("Auditorium with id %d is full", auditorium.ID)
				}
				seat = models.Seat{
					Row:          body.Row,
					Number:       body.Number,
					AuditoriumID: auditorium.ID,
				}
				if err := tx.Create(&seat).Error; err != nil {
					if errors.Is(err, gorm.ErrDuplicatedKey) {
						return fmt.Errorf("seat %s%d already exists in auditorium %d", body.Row, body.Number, auditorium.ID)
					}
					return err
				}
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": seat})
		}).
		PATCH("/seats/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateSeatRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var seat models.Seat
			if err := db.Where(&models.Seat{ID: params.ID}).First(&seat).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "seat not found"})
				return
			}
			updates := map[string]any{}
			if body.Row != nil {
				updates["row"] = *body.Row
			}
			if body.Number != nil {
				updates["number"] = *body.Number
			}
			err := db.
				Model(&models.Seat{}).
				Where(&models.Seat{ID: seat.ID}).
				Updates(updates).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "a seat with that row and number already exists"})
					return
				}
				abortWithError(ctx, err)
				return
			}
			if err := db.Where(&models.Seat{ID: seat.ID}).First(&seat).Error; err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": seat})
		}).
		DELETE("/seats/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var claims int64
			err := db.
				Model(&models.ReservedSeat{}).
				Where(&models.ReservedSeat{SeatID: params.ID}).
				Count(&claims).
				Error
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			if claims > 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "seat has active reservations"})
				return
			}
			if err := db.Delete(&models.Seat{}, params.ID).Error; err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
