package models

const (
	RoleAdmin      = "admin"
	RoleStoreOwner = "store_owner"
	RoleUser       = "user"
)

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStoreOwner || role == RoleUser
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
	Address      string `gorm:"size:400"                 json:"address"`
}

type Store struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"not null"                 json:"name"`
	Address string `gorm:"not null"                 json:"address"`
	OwnerID uint   `gorm:"index;not null"           json:"ownerId"`
}

// Rating holds one user's opinion of one store. The composite unique
// index makes concurrent submissions for the same (user, store) pair
// collapse into a single row via ON CONFLICT upserts.
type Rating struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"                   json:"id"`
	UserID   uint   `gorm:"uniqueIndex:idx_user_store;not null"        json:"userId"`
	StoreID  uint   `gorm:"uniqueIndex:idx_user_store;not null"        json:"storeId"`
	Rating   int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Feedback string `json:"feedback"`
}
