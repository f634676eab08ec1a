package events

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange               = "ecommerce.events"
	OrderPlacedRoutingKey        = "order.placed.v1"
	WalletCompensatedRoutingKey  = "wallet.compensated.v1"
	OrderStatusChangedRoutingKey = "order.status.changed.v1"
	checkoutServiceName          = "checkout-service-go"
	statusChangedConsumerName    = "checkout-order-status"
	headerRoutingKey             = "routing-key"
)

func serviceQueue(serviceName, routingKey string) string {
	return serviceName + "." + routingKey
}

func checkoutQueueName(routingKey string) string {
	return serviceQueue(checkoutServiceName, routingKey)
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
