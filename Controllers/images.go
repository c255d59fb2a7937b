package Controllers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ImageController handles ID-proof and vehicle photo uploads. Uploads are
// normalized before storage so the mobile clients get a predictable size.
type ImageController struct {
	UploadDir string
}

func NewImageController(uploadDir string) *ImageController {
	return &ImageController{UploadDir: uploadDir}
}

const maxImageWidth = 1600

// UploadImage stores one image and a thumbnail, returning the saved
// filenames. Callers attach the filenames to a person or vehicle record
// through the usual update endpoints.
func (c *ImageController) UploadImage(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("image")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file provided. Please upload an image."})
	}

	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	switch fileExt {
	case ".jpg", ".jpeg", ".png":
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid file type. Please upload a JPEG or PNG image."})
	}

	src, err := file.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open uploaded file."})
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File is not a readable image."})
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}
	thumb := imaging.Thumbnail(img, 240, 240, imaging.Lanczos)

	if err := os.MkdirAll(c.UploadDir, 0o755); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to prepare upload directory."})
	}

	name := uuid.NewString()
	imagePath := filepath.Join(c.UploadDir, name+".jpg")
	thumbPath := filepath.Join(c.UploadDir, name+"_thumb.jpg")

	if err := imaging.Save(img, imagePath, imaging.JPEGQuality(85)); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save image."})
	}
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(80)); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save thumbnail."})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"image":     name + ".jpg",
		"thumbnail": name + "_thumb.jpg",
	})
}

// GetImage serves a previously uploaded file by name.
func (c *ImageController) GetImage(ctx *fiber.Ctx) error {
	name := filepath.Base(ctx.Params("name"))
	path := filepath.Join(c.UploadDir, name)
	if _, err := os.Stat(path); err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Image not found"})
	}
	return ctx.SendFile(path)
}
