package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tavern/models"
)

// 角色卡上的欄位都是單純的無條件覆寫（last-write-wins），
// 唯一需要協調的狀態是物品持有權，那由交易協商流程負責

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (impl *ServerImpl) storageFailure(c *gin.Context, op string, err error) {
	slog.Error("Storage operation failed", slog.String("op", op), slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_error"})
}

// Create a character sheet
// (POST /characters)
func (impl *ServerImpl) PostCharacter(c *gin.Context) {
	const op = "PostCharacter"
	playerID, _, ok := impl.currentPlayer(c)
	if !ok {
		return
	}
	var request struct {
		Name         string `json:"name" binding:"required"`
		Strength     *int   `json:"strength"`
		Dexterity    *int   `json:"dexterity"`
		Constitution *int   `json:"constitution"`
		Intelligence *int   `json:"intelligence"`
		Wisdom       *int   `json:"wisdom"`
		Charisma     *int   `json:"charisma"`
		HitPoints    *int   `json:"hitPoints"`
		MaxHitPoints *int   `json:"maxHitPoints"`
		Biography    string `json:"biography"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	character := models.Character{
		PlayerID:  playerID,
		Name:      request.Name,
		Biography: impl.htmlChecker.Sanitize(request.Biography),
	}
	// 沒有提供的欄位交給資料庫的預設值
	for field, value := range map[*int]*int{
		&character.Strength:     request.Strength,
		&character.Dexterity:    request.Dexterity,
		&character.Constitution: request.Constitution,
		&character.Intelligence: request.Intelligence,
		&character.Wisdom:       request.Wisdom,
		&character.Charisma:     request.Charisma,
		&character.HitPoints:    request.HitPoints,
		&character.MaxHitPoints: request.MaxHitPoints,
	} {
		if value != nil {
			*field = *value
		}
	}
	if result := impl.db.Create(&character); result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	c.Header("Location", "/characters/"+character.ID.String())
	c.JSON(http.StatusCreated, gin.H{"character": character})
}

// Get a character sheet with all child rows
// (GET /characters/{characterID})
func (impl *ServerImpl) GetCharacter(c *gin.Context) {
	const op = "GetCharacter"
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	characterID, ok := pathUUID(c, "characterID")
	if !ok {
		return
	}

	character := models.Character{ID: characterID}
	result := impl.db.
		Preload("Player").
		Preload("Skills").
		Preload("Spells").
		Preload("Notes").
		First(&character)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "character not found"})
			return
		}
		impl.storageFailure(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{"character": character})
}

// Update character fields unconditionally
// (PATCH /characters/{characterID})
func (impl *ServerImpl) PatchCharacter(c *gin.Context) {
	const op = "PatchCharacter"
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	characterID, ok := pathUUID(c, "characterID")
	if !ok {
		return
	}
	var request struct {
		Name         *string `json:"name"`
		Strength     *int    `json:"strength"`
		Dexterity    *int    `json:"dexterity"`
		Constitution *int    `json:"constitution"`
		Intelligence *int    `json:"intelligence"`
		Wisdom       *int    `json:"wisdom"`
		Charisma     *int    `json:"charisma"`
		HitPoints    *int    `json:"hitPoints"`
		MaxHitPoints *int    `json:"maxHitPoints"`
		Biography    *string `json:"biography"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	updates := map[string]any{}
	for column, value := range map[string]*int{
		"strength":       request.Strength,
		"dexterity":      request.Dexterity,
		"constitution":   request.Constitution,
		"intelligence":   request.Intelligence,
		"wisdom":         request.Wisdom,
		"charisma":       request.Charisma,
		"hit_points":     request.HitPoints,
		"max_hit_points": request.MaxHitPoints,
	} {
		if value != nil {
			updates[column] = *value
		}
	}
	if request.Name != nil {
		updates["name"] = *request.Name
	}
	if request.Biography != nil {
		updates["biography"] = impl.htmlChecker.Sanitize(*request.Biography)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no fields to update"})
		return
	}

	result := impl.db.Model(&models.Character{ID: characterID}).Updates(updates)
	if result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "character not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Add a skill to a character sheet
// (POST /characters/{characterID}/skills)
func (impl *ServerImpl) PostSkill(c *gin.Context) {
	const op = "PostSkill"
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	characterID, ok := pathUUID(c, "characterID")
	if !ok {
		return
	}
	var request struct {
		Name string `json:"name" binding:"required"`
		Rank int    `json:"rank"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	skill := models.Skill{CharacterID: characterID, Name: request.Name, Rank: request.Rank}
	if result := impl.db.Create(&skill); result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"skill": skill})
}

// Update a skill
// (PATCH /skills/{skillID})
func (impl *ServerImpl) PatchSkill(c *gin.Context) {
	const op = "PatchSkill"
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	skillID, ok := pathUUID(c, "skillID")
	if !ok {
		return
	}
	var request struct {
		Name *string `json:"name"`
		Rank *int    `json:"rank"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	updates := map[string]any{}
	if request.Name != nil {
		updates["name"] = *request.Name
	}
	if request.Rank != nil {
		updates["rank"] = *request.Rank
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no fields to update"})
		return
	}
	result := impl.db.Model(&models.Skill{ID: skillID}).Updates(updates)
	if result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "skill not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Remove a skill
// (DELETE /skills/{skillID})
func (impl *ServerImpl) DeleteSkill(c *gin.Context) {
	const op = "DeleteSkill"
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	skillID, ok := pathUUID(c, "skillID")
	if !ok {
		return
	}
	if result := impl.db.Delete(&models.Skill{ID: skillID}); result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Add a spell to a character sheet
// (POST /characters/{characterID}/spells)
func (impl *ServerImpl) PostSpell(c *gin.Context) {
	const op = "PostSpell"
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	characterID, ok := pathUUID(c, "characterID")
	if !ok {
		return
	}
	var request struct {
		Name     string `json:"name" binding:"required"`
		Level    int    `json:"level"`
		Prepared bool   `json:"prepared"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	spell := models.Spell{
		CharacterID: characterID,
		Name:        request.Name,
		Level:       request.Level,
		Prepared:    request.Prepared,
	}
	if result := impl.db.Create(&spell); result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"spell": spell})
}

// Update a spell
// (PATCH /spells/{spellID})
func (impl *ServerImpl) PatchSpell(c *gin.Context) {
	const op = "PatchSpell"
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	spellID, ok := pathUUID(c, "spellID")
	if !ok {
		return
	}
	var request struct {
		Name     *string `json:"name"`
		Level    *int    `json:"level"`
		Prepared *bool   `json:"prepared"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	updates := map[string]any{}
	if request.Name != nil {
		updates["name"] = *request.Name
	}
	if request.Level != nil {
		updates["level"] = *request.Level
	}
	if request.Prepared != nil {
		updates["prepared"] = *request.Prepared
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no fields to update"})
		return
	}
	result := impl.db.Model(&models.Spell{ID: spellID}).Updates(updates)
	if result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "spell not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Remove a spell
// (DELETE /spells/{spellID})
func (impl *ServerImpl) DeleteSpell(c *gin.Context) {
	const op = "DeleteSpell"
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	spellID, ok := pathUUID(c, "spellID")
	if !ok {
		return
	}
	if result := impl.db.Delete(&models.Spell{ID: spellID}); result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Add a note to a character sheet
// (POST /characters/{characterID}/notes)
func (impl *ServerImpl) PostNote(c *gin.Context) {
	const op = "PostNote"
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	characterID, ok := pathUUID(c, "characterID")
	if !ok {
		return
	}
	var request struct {
		Title string `json:"title" binding:"required"`
		Body  string `json:"body"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	note := models.Note{
		CharacterID: characterID,
		Title:       request.Title,
		Body:        impl.htmlChecker.Sanitize(request.Body),
	}
	if result := impl.db.Create(&note); result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// Update a note
// (PATCH /notes/{noteID})
func (impl *ServerImpl) PatchNote(c *gin.Context) {
	const op = "PatchNote"
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	noteID, ok := pathUUID(c, "noteID")
	if !ok {
		return
	}
	var request struct {
		Title *string `json:"title"`
		Body  *string `json:"body"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	updates := map[string]any{}
	if request.Title != nil {
		updates["title"] = *request.Title
	}
	if request.Body != nil {
		updates["body"] = impl.htmlChecker.Sanitize(*request.Body)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no fields to update"})
		return
	}
	result := impl.db.Model(&models.Note{ID: noteID}).Updates(updates)
	if result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "note not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Remove a note
// (DELETE /notes/{noteID})
func (impl *ServerImpl) DeleteNote(c *gin.Context) {
	const op = "DeleteNote"
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	noteID, ok := pathUUID(c, "noteID")
	if !ok {
		return
	}
	if result := impl.db.Delete(&models.Note{ID: noteID}); result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
