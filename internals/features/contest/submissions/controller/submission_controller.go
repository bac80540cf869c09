package controller

import (
	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/features/contest/submissions/dto"
	"rumble_backend/internals/features/contest/submissions/service"
	userModel "rumble_backend/internals/features/users/user/model"

	"rumble_backend/internals/constants"
	helper "rumble_backend/internals/helpers"
	helperOSS "rumble_backend/internals/helpers/oss"
)

// maxPageBytes caps one uploaded page.
const maxPageBytes = 10 << 20

type SubmissionController struct {
	Svc *service.Service
}

func NewSubmissionController(svc *service.Service) *SubmissionController {
	return &SubmissionController{Svc: svc}
}

// POST /api/submissions (multipart: page + promptId [+ rumbleId, transcription])
func (sc *SubmissionController) Submit(c *fiber.Ctx) error {
	user, ok := c.Locals(helper.LocUser).(*userModel.UserModel)
	if !ok || user == nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	form, err := c.MultipartForm()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Expected a multipart form")
	}
	fh, err := helperOSS.FirstUploadFile(form)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "No page attached")
	}
	if !constants.IsImageExt(fh.Filename) {
		return helper.JsonError(c, fiber.StatusUnsupportedMediaType, "Pages must be PNG, JPEG or WebP images")
	}
	raw, err := helperOSS.ReadFileHeader(fh, maxPageBytes)
	if err != nil {
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	}

	ctx := c.UserContext()
	up, err := sc.Svc.Upload(ctx, user.ID, fh.Filename, raw)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	in := service.ProcessInput{
		Upload:   *up,
		PromptID: req.PromptID,
		User:     user,
		SourceID: req.SourceID,
		RumbleID: req.RumbleID,
	}
	if req.RumbleID != nil && in.SourceID == 0 {
		in.SourceID = constants.SourceRumble
	}
	if req.Transcription != "" {
		in.Transcription = &req.Transcription
		in.TranscriptionSourceID = constants.TranscriptionSourceUser
	}

	item, err := sc.Svc.ProcessSubmission(ctx, in)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Submission scored", item)
}

// GET /api/submissions?limit=&offset=
func (sc *SubmissionController) ListMine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, 10, 50)
	items, err := sc.Svc.GetUserSubmissions(c.UserContext(), userID, p.Limit, p.Offset)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", items, helper.BuildPagination(p, len(items)))
}

// GET /api/submissions/:id
func (sc *SubmissionController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	item, err := sc.Svc.GetByID(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", item)
}

/* ==========================
   MODERATION
========================== */

// GET /api/moderation/flags
func (sc *SubmissionController) FlagTypes(c *fiber.Ctx) error {
	flags, err := sc.Svc.ListFlagTypes(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", flags)
}

// POST /api/moderation/submissions/:id/flags
// Anonymous reports are accepted and stored without a creator.
func (sc *SubmissionController) Flag(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.FlagRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	var creator *uint
	if uid, err := helper.GetUserIDFromToken(c); err == nil {
		creator = &uid
	}

	rows, err := sc.Svc.FlagSubmission(c.UserContext(), id, req.Flags, creator)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Submission flagged", rows)
}

// GET /api/moderation/submissions/:id/flags
func (sc *SubmissionController) Flags(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	names, err := sc.Svc.GetFlagsBySubID(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", names)
}

// DELETE /api/moderation/submissions/:id/flags/:flagId
func (sc *SubmissionController) Unflag(c *fiber.Ctx) error {
	id, err := helper.ParseUintParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	flagID, err := helper.ParseUintParam(c, "flagId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := sc.Svc.RemoveFlag(c.UserContext(), id, flagID); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "Flag removed", fiber.Map{"submissionId": id, "flagId": flagID})
}
