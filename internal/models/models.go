package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus represents the delivery progress of an order.
type OrderStatus string

// Order statuses, forward-only.
const (
	OrderStatusOnGoing   OrderStatus = "on-going"
	OrderStatusPickedUp  OrderStatus = "picked-up"
	OrderStatusDelivered OrderStatus = "delivered"
)

// DeliveryBoyStatus represents the availability of a delivery boy.
type DeliveryBoyStatus string

const (
	DeliveryBoyAvailable DeliveryBoyStatus = "available"
	DeliveryBoyOnGoing   DeliveryBoyStatus = "on-going"
	DeliveryBoyInactive  DeliveryBoyStatus = "inactive"
)

// MaxRating bounds the derived rating for users and donors.
const MaxRating = 5.0

// GeoPoint is a GeoJSON Point, coordinates ordered [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON Point from a longitude/latitude pair.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// User coordinates requests and orders and registers delivery boys.
type User struct {
	ID                          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username                    string               `bson:"username" json:"username"`
	Email                       string               `bson:"email" json:"email"`
	PasswordHash                string               `bson:"password" json:"-"`
	Address                     string               `bson:"address" json:"address"`
	Location                    GeoPoint             `bson:"location" json:"location"`
	DeliveryBoys                []primitive.ObjectID `bson:"deliveryBoys" json:"deliveryBoys"`
	DonorOrdersCount            int64                `bson:"donorOrdersCount" json:"donorOrdersCount"`
	DeliveredOrdersCount        int64                `bson:"deliveredOrdersCount" json:"deliveredOrdersCount"`
	RegisteredDeliveryBoysCount int64                `bson:"registeredDeliveryBoysCount" json:"registeredDeliveryBoysCount"`
	Rating                      float64              `bson:"rating" json:"rating"`
	CreatedAt                   time.Time            `bson:"createdAt" json:"createdAt"`
}

// Donor posts surplus food and accepts requests against its posts.
type Donor struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	PasswordHash   string             `bson:"password" json:"-"`
	Address        string             `bson:"address" json:"address"`
	IsBanned       bool               `bson:"isBanned" json:"isBanned"`
	DonationsCount int64              `bson:"donationsCount" json:"donationsCount"`
	Rating         float64            `bson:"rating" json:"rating"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// DeliveryBoy fulfills orders. Status is owned by the order state machine
// and the boy's own toggle action; no other writer may change it.
type DeliveryBoy struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Mobile          string             `bson:"mobile" json:"mobile"`
	PasswordHash    string             `bson:"password" json:"-"`
	VehicleNo       string             `bson:"vehicleNo" json:"vehicleNo"`
	DrivingLicense  string             `bson:"drivingLicense" json:"drivingLicense"`
	CurrentLocation GeoPoint           `bson:"currentLocation" json:"currentLocation"`
	Status          DeliveryBoyStatus  `bson:"status" json:"status"`
	DeliveredOrders int64              `bson:"deliveredOrders" json:"deliveredOrders"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// Moderator can ban and unban donors.
type Moderator struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// Post is a donor's announcement of available food. Posts are closed when a
// request against them is accepted, never deleted.
type Post struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DonorUsername   string             `bson:"donorUsername" json:"donorUsername"`
	AvailableFood   []string           `bson:"availableFood" json:"availableFood"`
	Location        string             `bson:"location" json:"location"`
	CurrentLocation GeoPoint           `bson:"currentlocation" json:"currentlocation"`
	IsDealClosed    bool               `bson:"isDealClosed" json:"isDealClosed"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// Request is a user's expression of interest in a post. At most one request
// exists per (post, donor, user) triple.
type Request struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DonorUsername    string             `bson:"donorUsername" json:"donorUsername"`
	UserUsername     string             `bson:"userUsername" json:"userUsername"`
	PostID           primitive.ObjectID `bson:"post_id" json:"post_id"`
	Location         string             `bson:"location" json:"location"`
	AvailableFood    []string           `bson:"availableFood" json:"availableFood"`
	IsAccepted       bool               `bson:"isAccepted" json:"isAccepted"`
	IsRejected       bool               `bson:"isRejected" json:"isRejected"`
	DeliveryAssigned bool               `bson:"deliveryAssigned" json:"deliveryAssigned"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// Order is the fulfillment unit created once a request is accepted and a
// delivery boy assigned. DeliveryBoyName is denormalized at creation time.
type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DonorUsername    string             `bson:"donorUsername" json:"donorUsername"`
	UserUsername     string             `bson:"userUsername" json:"userUsername"`
	PostID           primitive.ObjectID `bson:"post_id" json:"post_id"`
	PickupLocation   string             `bson:"pickupLocation" json:"pickupLocation"`
	PickupGeo        GeoPoint           `bson:"pickupGeo" json:"pickupGeo"`
	DeliveryLocation string             `bson:"deliveryLocation" json:"deliveryLocation"`
	DeliveryBoyID    primitive.ObjectID `bson:"deliveryBoy" json:"deliveryBoy"`
	DeliveryBoyName  string             `bson:"deliveryBoyName" json:"deliveryBoyName"`
	Status           OrderStatus        `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderEvent is the message published to the service bus after a lifecycle
// transition. The worker consumes it to refresh derived ratings.
type OrderEvent struct {
	Type           string    `json:"type"`
	IdempotencyKey string    `json:"idempotencyKey"`
	UserUsername   string    `json:"userUsername,omitempty"`
	DonorUsername  string    `json:"donorUsername,omitempty"`
	OrderID        string    `json:"orderId,omitempty"`
	RequestID      string    `json:"requestId,omitempty"`
	Time           time.Time `json:"time"`
}

// Order event types.
const (
	EventRequestAccepted = "request_accepted"
	EventOrderDelivered  = "order_delivered"
)
