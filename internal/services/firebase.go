package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/pawalk/pawalk-backend/internal/models"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

var (
	// FirebaseApp is the Firebase app instance
	FirebaseApp *firebase.App
	// MessagingClient is the Firebase Cloud Messaging client
	MessagingClient *messaging.Client
)

// InitFirebase initializes Firebase Admin SDK
func InitFirebase(serviceAccountPath string) error {
	ctx := context.Background()

	if serviceAccountPath == "" {
		log.Println("Warning: FIREBASE_SERVICE_ACCOUNT_PATH not set. Push notifications will be disabled.")
		return nil
	}

	// Initialize Firebase app
	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return fmt.Errorf("error initializing firebase app: %v", err)
	}

	// Initialize messaging client
	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("error getting messaging client: %v", err)
	}

	FirebaseApp = app
	MessagingClient = client

	log.Println("Firebase Cloud Messaging initialized successfully")
	return nil
}

// NotificationPayload represents the notification data
type NotificationPayload struct {
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data,omitempty"`
	ChannelID string                 `json:"channelId,omitempty"` // Android notification channel
	Sound     string                 `json:"sound,omitempty"`     // Custom sound file name
	Priority  string                 `json:"priority,omitempty"`  // high, normal, low
}

// getAndroidConfig returns Android-specific notification configuration
func getAndroidConfig(payload NotificationPayload) *messaging.AndroidConfig {
	channelID := payload.ChannelID
	if channelID == "" {
		channelID = "pawalk_default"
	}

	sound := payload.Sound
	if sound == "" {
		sound = "default"
	}

	priority := messaging.PriorityHigh
	if payload.Priority == "normal" {
		priority = messaging.PriorityDefault
	}

	return &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound:                 sound,
			ChannelID:             channelID,
			Priority:              priority,
			DefaultSound:          sound == "default",
			DefaultVibrateTimings: true,
		},
	}
}

// getAPNSConfig returns iOS-specific notification configuration
func getAPNSConfig(payload NotificationPayload) *messaging.APNSConfig {
	sound := payload.Sound
	if sound == "" {
		sound = "default"
	}

	badge := 1
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Sound:            sound,
				Badge:            &badge,
				MutableContent:   true,
				ContentAvailable: true,
			},
		},
	}
}

// SendNotificationToToken sends a notification to a specific FCM token
func SendNotificationToToken(ctx context.Context, token string, payload NotificationPayload) error {
	if MessagingClient == nil {
		log.Println("Warning: Firebase not initialized. Skipping notification.")
		return nil
	}

	// Convert data map to string map (required by FCM)
	dataStrings := make(map[string]string)
	for key, value := range payload.Data {
		// Marshal complex types to JSON strings
		switch v := value.(type) {
		case string:
			dataStrings[key] = v
		case int, int64, float64, bool:
			dataStrings[key] = fmt.Sprintf("%v", v)
		default:
			jsonData, err := json.Marshal(v)
			if err != nil {
				log.Printf("Error marshaling data for key %s: %v", key, err)
				continue
			}
			dataStrings[key] = string(jsonData)
		}
	}

	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data:  dataStrings,
		Token: token,
	}

	// Set platform-specific options
	message.Android = getAndroidConfig(payload)
	message.APNS = getAPNSConfig(payload)

	response, err := MessagingClient.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending message: %v", err)
	}

	log.Printf("Successfully sent notification: %s", response)
	return nil
}

// Dispatcher implements booking.Notifier over FCM. Lookups and sends are
// fire-and-forget from the engine's point of view; any failure here is
// logged and dropped, never propagated back into a state transition.
type Dispatcher struct {
	db *gorm.DB
}

func NewDispatcher(db *gorm.DB) *Dispatcher {
	return &Dispatcher{db: db}
}

func (d *Dispatcher) Notify(ctx context.Context, userID uint, eventType, title, description, link string) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		log.Printf("notify: user %d lookup failed: %v", userID, err)
		return
	}
	if user.FCMToken == "" {
		return
	}

	payload := NotificationPayload{
		Title: title,
		Body:  description,
		Data: map[string]interface{}{
			"type": eventType,
			"link": link,
		},
	}
	if err := SendNotificationToToken(ctx, user.FCMToken, payload); err != nil {
		log.Printf("notify: user %d: %v", userID, err)
	}
}
