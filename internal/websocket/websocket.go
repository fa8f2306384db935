package websocket

import (
	"log"
	"net/http"
	"sync"
	"time"

	"fleet-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Константы для типов сообщений WebSocket
const (
	CycleStatusUpdateType    = "CYCLE_STATUS_UPDATE"
	TruckStatusUpdateType    = "TRUCK_STATUS_UPDATE"
	OperatorStatusUpdateType = "OPERATOR_STATUS_UPDATE"
)

// WebSocketMessage представляет формат сообщения WebSocket
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocketManager управляет всеми подключениями WebSocket
type WebSocketManager struct {
	clients    map[string]*websocket.Conn
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	broadcast  chan *WebSocketMessage
	mutex      sync.RWMutex
}

// WebSocketClient представляет клиентское соединение WebSocket
type WebSocketClient struct {
	conn     *websocket.Conn
	clientID string
}

// Глобальный менеджер WebSocket
var wsManager = NewWebSocketManager()

// Настройка для обновления WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Разрешаем подключения с любых источников
	},
}

// NewWebSocketManager создает новый менеджер WebSocket
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]*websocket.Conn),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		broadcast:  make(chan *WebSocketMessage, 64),
	}
}

// Start запускает обработку сообщений WebSocket
func (manager *WebSocketManager) Start() {
	go func() {
		for {
			select {
			case client := <-manager.register:
				manager.mutex.Lock()
				manager.clients[client.clientID] = client.conn
				manager.mutex.Unlock()
				log.Printf("WebSocket клиент подключен: %s", client.clientID)

			case client := <-manager.unregister:
				manager.mutex.Lock()
				if conn, ok := manager.clients[client.clientID]; ok {
					conn.Close()
					delete(manager.clients, client.clientID)
				}
				manager.mutex.Unlock()
				log.Printf("WebSocket клиент отключен: %s", client.clientID)

			case message := <-manager.broadcast:
				manager.mutex.RLock()
				for clientID, conn := range manager.clients {
					conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
					if err := conn.WriteJSON(message); err != nil {
						log.Printf("Ошибка отправки сообщения клиенту %s: %v", clientID, err)
					}
				}
				manager.mutex.RUnlock()
			}
		}
	}()
}

// StartManager запускает глобальный менеджер WebSocket
func StartManager() {
	wsManager.Start()
}

// Handler обрабатывает входящие WebSocket подключения
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Ошибка обновления соединения до WebSocket: %v", err)
			return
		}

		client := &WebSocketClient{
			conn:     conn,
			clientID: uuid.NewString(),
		}
		wsManager.register <- client

		// Читаем входящие сообщения только для отслеживания закрытия
		go func() {
			defer func() {
				wsManager.unregister <- client
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

// notify кладет сообщение в очередь рассылки, не блокируя обработчик
// запроса при переполнении очереди
func notify(messageType string, payload interface{}) {
	select {
	case wsManager.broadcast <- &WebSocketMessage{Type: messageType, Payload: payload}:
	default:
		log.Printf("Очередь WebSocket переполнена, сообщение %s пропущено", messageType)
	}
}

// NotifyCycleUpdate рассылает обновление статуса цикла всем клиентам
func NotifyCycleUpdate(cycle *models.Cycle) {
	notify(CycleStatusUpdateType, cycle)
}

// NotifyTruckUpdate рассылает обновление статуса грузовика
func NotifyTruckUpdate(truck *models.Truck) {
	notify(TruckStatusUpdateType, truck)
}

// NotifyOperatorUpdate рассылает обновление статуса оператора
func NotifyOperatorUpdate(operator *models.Operator) {
	notify(OperatorStatusUpdateType, operator)
}
