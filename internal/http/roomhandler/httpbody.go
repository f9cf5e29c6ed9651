package roomhandler

type CreateRoomBody struct {
	Name       string `json:"name"       binding:"required,max=80" example:"Sprint 42 planning"`
	Private    bool   `json:"private"                              example:"true"`
	AccessCode string `json:"accessCode" binding:"max=64"          example:"4242"`
} // @name CreateRoomRequest

type RoomResponse struct {
	Slug    string `json:"slug"    example:"sprint-42-planning-k3x9"`
	Name    string `json:"name"    example:"Sprint 42 planning"`
	Private bool   `json:"private" example:"true"`
} // @name RoomResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
